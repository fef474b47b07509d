package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDOptimism = 10
	ChainIDPolygon  = 137
	ChainIDBase     = 8453
	ChainIDArbitrum = 42161
	ChainIDSepolia  = 11155111
)

// Well-known USDC addresses per chain.
var (
	AddrUSDCEthereum = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	AddrUSDCOptimism = common.HexToAddress("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85")
	AddrUSDCPolygon  = common.HexToAddress("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359")
	AddrUSDCBase     = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	AddrUSDCArbitrum = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
)

// Well-known USDT addresses per chain.
var (
	AddrUSDTEthereum = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	AddrUSDTOptimism = common.HexToAddress("0x94b008aA00579c1307B0EF2c499aD98a8ce58e58")
	AddrUSDTPolygon  = common.HexToAddress("0xc2132D05D31c914a87C6611C10748AEb04B58e8F")
	AddrUSDTArbitrum = common.HexToAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9")
)

// Well-known WETH addresses per chain.
var (
	AddrWETHEthereum = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	AddrWETHOptimism = common.HexToAddress("0x4200000000000000000000000000000000000006")
	AddrWETHPolygon  = common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")
	AddrWETHBase     = common.HexToAddress("0x4200000000000000000000000000000000000006")
	AddrWETHArbitrum = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")
)

// Other well-known tokens on Ethereum Mainnet.
var (
	AddrDAIEthereum  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	AddrWBTCEthereum = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")
)

// Well-known Assets (pre-created instances).
var (
	// Native coins
	ETH       = MustNewNative(ChainIDEthereum, "ETH", "Ethereum", 18)
	ETHOpt    = MustNewNative(ChainIDOptimism, "ETH", "Ethereum (Optimism)", 18)
	POL       = MustNewNative(ChainIDPolygon, "POL", "Polygon", 18)
	ETHBase   = MustNewNative(ChainIDBase, "ETH", "Ethereum (Base)", 18)
	ETHArb    = MustNewNative(ChainIDArbitrum, "ETH", "Ethereum (Arbitrum)", 18)
	SepoliaETH = MustNewNative(ChainIDSepolia, "ETH", "Sepolia Ether", 18)

	// USDC across chains
	USDC         = MustNewToken(ChainIDEthereum, AddrUSDCEthereum, "USDC", "USD Coin", 6)
	USDCOptimism = MustNewToken(ChainIDOptimism, AddrUSDCOptimism, "USDC", "USD Coin (Optimism)", 6)
	USDCPolygon  = MustNewToken(ChainIDPolygon, AddrUSDCPolygon, "USDC", "USD Coin (Polygon)", 6)
	USDCBase     = MustNewToken(ChainIDBase, AddrUSDCBase, "USDC", "USD Coin (Base)", 6)
	USDCArbitrum = MustNewToken(ChainIDArbitrum, AddrUSDCArbitrum, "USDC", "USD Coin (Arbitrum)", 6)

	// USDT across chains
	USDT         = MustNewToken(ChainIDEthereum, AddrUSDTEthereum, "USDT", "Tether USD", 6)
	USDTOptimism = MustNewToken(ChainIDOptimism, AddrUSDTOptimism, "USDT", "Tether USD (Optimism)", 6)
	USDTPolygon  = MustNewToken(ChainIDPolygon, AddrUSDTPolygon, "USDT", "Tether USD (Polygon)", 6)
	USDTArbitrum = MustNewToken(ChainIDArbitrum, AddrUSDTArbitrum, "USDT", "Tether USD (Arbitrum)", 6)

	// WETH across chains
	WETH         = MustNewToken(ChainIDEthereum, AddrWETHEthereum, "WETH", "Wrapped Ether", 18)
	WETHOptimism = MustNewToken(ChainIDOptimism, AddrWETHOptimism, "WETH", "Wrapped Ether (Optimism)", 18)
	WETHPolygon  = MustNewToken(ChainIDPolygon, AddrWETHPolygon, "WETH", "Wrapped Ether (Polygon)", 18)
	WETHBase     = MustNewToken(ChainIDBase, AddrWETHBase, "WETH", "Wrapped Ether (Base)", 18)
	WETHArbitrum = MustNewToken(ChainIDArbitrum, AddrWETHArbitrum, "WETH", "Wrapped Ether (Arbitrum)", 18)

	// Ethereum-only
	DAI  = MustNewToken(ChainIDEthereum, AddrDAIEthereum, "DAI", "Dai Stablecoin", 18)
	WBTC = MustNewToken(ChainIDEthereum, AddrWBTCEthereum, "WBTC", "Wrapped Bitcoin", 8)
)

// DefaultRegistry returns a registry pre-populated with well-known assets
// across the supported chains.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, a := range []*Asset{
		ETH, ETHOpt, POL, ETHBase, ETHArb, SepoliaETH,
		USDC, USDCOptimism, USDCPolygon, USDCBase, USDCArbitrum,
		USDT, USDTOptimism, USDTPolygon, USDTArbitrum,
		WETH, WETHOptimism, WETHPolygon, WETHBase, WETHArbitrum,
		DAI, WBTC,
	} {
		r.Register(a)
	}

	return r
}

// MustNewToken creates a new ERC20 token asset with the given parameters.
// This is a convenience function for registering custom tokens.
func MustNewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(chainID, address)
	return NewAssetWithName(id, symbol, name, decimals)
}

// MustNewNative creates a new native coin asset.
func MustNewNative(chainID uint64, symbol, name string, decimals uint8) *Asset {
	id := NewNativeAssetID(chainID)
	return NewAssetWithName(id, symbol, name, decimals)
}
