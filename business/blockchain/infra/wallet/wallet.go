// Package wallet signs and submits contract calls on behalf of the bot.
// In dry-run mode it fabricates transactions instead of touching a chain.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivoros/chainarb/business/blockchain/app"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/logger"
)

const (
	tracerName = "chainarb/blockchain/wallet"

	receiptPollInterval = 2 * time.Second
)

// Config holds wallet configuration.
type Config struct {
	// Address is the account address. Used as-is in dry-run mode;
	// derived from the key otherwise.
	Address string
	// PrivateKey is the hex-encoded signing key. Empty in dry-run mode.
	PrivateKey string
	DryRun     bool
}

// Wallet submits contract calls. It satisfies the transaction sender
// ports of the trading contexts.
type Wallet struct {
	clients map[uint64]*ethclient.Client
	oracle  app.GasOracle
	logger  logger.LoggerInterface

	address common.Address
	key     *ecdsa.PrivateKey
	dryRun  bool

	// Serializes sends per chain so nonces never collide.
	nonceMu sync.Mutex

	tracer trace.Tracer
}

// New creates a wallet. Outside dry-run mode the private key is required
// and the account address is derived from it.
func New(cfg Config, clients map[uint64]*ethclient.Client, oracle app.GasOracle, log logger.LoggerInterface) (*Wallet, error) {
	w := &Wallet{
		clients: clients,
		oracle:  oracle,
		logger:  log,
		address: common.HexToAddress(cfg.Address),
		dryRun:  cfg.DryRun,
		tracer:  otel.Tracer(tracerName),
	}

	if !cfg.DryRun {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithCause(err),
				apperror.WithMessage("invalid wallet private key"))
		}
		w.key = key
		w.address = crypto.PubkeyToAddress(key.PublicKey)
	}

	return w, nil
}

// Address returns the account address.
func (w *Wallet) Address() common.Address {
	return w.address
}

// SendContractCall signs and submits a contract call, waits for it to be
// mined, and returns the transaction hash and gas used.
func (w *Wallet) SendContractCall(ctx context.Context, chainID uint64, to common.Address, data []byte) (string, uint64, error) {
	ctx, span := w.tracer.Start(ctx, "wallet.send_contract_call",
		trace.WithAttributes(
			attribute.Int64("chain_id", int64(chainID)),
			attribute.String("to", to.Hex()),
			attribute.Bool("dry_run", w.dryRun),
		),
	)
	defer span.End()

	if w.dryRun {
		return w.simulateCall(ctx, chainID, to, data)
	}

	client, ok := w.clients[chainID]
	if !ok {
		return "", 0, apperror.New(apperror.CodeNetworkNotConfigured,
			apperror.WithContext("chain_id", chainID))
	}

	estimate, err := w.oracle.Estimate(ctx, chainID, to, data)
	if err != nil {
		span.RecordError(err)
		return "", 0, err
	}

	w.nonceMu.Lock()
	signedTx, err := w.signNext(ctx, client, chainID, to, data, estimate.GasLimit, estimate.Price.Wei)
	if err == nil {
		err = client.SendTransaction(ctx, signedTx)
	}
	w.nonceMu.Unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return "", 0, apperror.New(apperror.CodeTransactionFailure,
			apperror.WithCause(err),
			apperror.WithMessagef("failed to send transaction on chain %d", chainID))
	}

	txHash := signedTx.Hash()
	span.SetAttributes(attribute.String("tx_hash", txHash.Hex()))

	receipt, err := w.waitMined(ctx, client, txHash)
	if err != nil {
		span.RecordError(err)
		return txHash.Hex(), 0, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		err := apperror.New(apperror.CodeTransactionFailure,
			apperror.WithMessagef("transaction %s reverted", txHash.Hex()),
			apperror.WithContext("chain_id", chainID))
		span.RecordError(err)
		span.SetStatus(codes.Error, "reverted")
		return txHash.Hex(), receipt.GasUsed, err
	}

	w.logger.Info(ctx, "transaction mined",
		"chain_id", chainID,
		"tx_hash", txHash.Hex(),
		"gas_used", receipt.GasUsed,
	)
	span.SetStatus(codes.Ok, "mined")

	return txHash.Hex(), receipt.GasUsed, nil
}

// signNext builds and signs a transaction at the next pending nonce.
// Caller holds nonceMu.
func (w *Wallet) signNext(ctx context.Context, client *ethclient.Client, chainID uint64, to common.Address, data []byte, gasLimit uint64, gasPrice *big.Int) (*types.Transaction, error) {
	nonce, err := client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signer := types.LatestSignerForChainID(new(big.Int).SetUint64(chainID))
	signedTx, err := types.SignTx(tx, signer, w.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return signedTx, nil
}

// waitMined polls for the transaction receipt until the context ends.
func (w *Wallet) waitMined(ctx context.Context, client *ethclient.Client, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, apperror.New(apperror.CodeTimeout,
				apperror.WithCause(ctx.Err()),
				apperror.WithMessagef("transaction %s not mined in time", txHash.Hex()))
		case <-ticker.C:
		}
	}
}

// simulateCall fabricates a successful transaction, using the gas oracle
// estimate when a client is available.
func (w *Wallet) simulateCall(ctx context.Context, chainID uint64, to common.Address, data []byte) (string, uint64, error) {
	gasUsed := uint64(150_000)
	if _, ok := w.clients[chainID]; ok {
		if estimate, err := w.oracle.Estimate(ctx, chainID, to, data); err == nil {
			gasUsed = estimate.GasLimit
		}
	}

	txHash := "0xdry-" + uuid.NewString()
	w.logger.Info(ctx, "dry-run transaction",
		"chain_id", chainID,
		"to", to.Hex(),
		"tx_hash", txHash,
		"gas_used", gasUsed,
	)
	return txHash, gasUsed, nil
}
