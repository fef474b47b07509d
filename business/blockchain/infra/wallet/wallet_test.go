package wallet

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ivoros/chainarb/business/blockchain/domain"
	"github.com/ivoros/chainarb/internal/logger"
)

type mockLogger struct{}

func (mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = mockLogger{}

type stubOracle struct{}

func (stubOracle) GasPrice(ctx context.Context, chainID uint64) (*domain.GasPrice, error) {
	return nil, context.Canceled
}

func (stubOracle) EstimateGas(ctx context.Context, chainID uint64, to common.Address, data []byte) (uint64, error) {
	return 0, context.Canceled
}

func (stubOracle) Estimate(ctx context.Context, chainID uint64, to common.Address, data []byte) (*domain.GasEstimate, error) {
	return nil, context.Canceled
}

func TestDryRunSendFabricatesTransaction(t *testing.T) {
	w, err := New(Config{
		Address: "0x1111111111111111111111111111111111111111",
		DryRun:  true,
	}, nil, stubOracle{}, mockLogger{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	txHash, gasUsed, err := w.SendContractCall(context.Background(), 1, to, []byte{0x01})
	if err != nil {
		t.Fatalf("SendContractCall() error = %v", err)
	}
	if !strings.HasPrefix(txHash, "0xdry-") {
		t.Errorf("txHash = %q, want 0xdry- prefix", txHash)
	}
	if gasUsed == 0 {
		t.Error("gasUsed = 0, want nonzero")
	}
}

func TestDryRunAddressFromConfig(t *testing.T) {
	addr := "0x1111111111111111111111111111111111111111"
	w, err := New(Config{Address: addr, DryRun: true}, nil, stubOracle{}, mockLogger{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.Address() != common.HexToAddress(addr) {
		t.Errorf("Address() = %s, want %s", w.Address(), addr)
	}
}

func TestLiveModeRequiresValidKey(t *testing.T) {
	_, err := New(Config{PrivateKey: "not-a-key"}, nil, stubOracle{}, mockLogger{})
	if err == nil {
		t.Fatal("New() with invalid key should fail")
	}
}

func TestLiveModeDerivesAddressFromKey(t *testing.T) {
	// Well-known test vector key.
	key := "4f3edf983ac636a65a842ce7c78d9aa706d3b113bce9c46f30d7d21715b23b1d"
	w, err := New(Config{PrivateKey: key}, nil, stubOracle{}, mockLogger{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	want := common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	if w.Address() != want {
		t.Errorf("Address() = %s, want %s", w.Address(), want)
	}
}
