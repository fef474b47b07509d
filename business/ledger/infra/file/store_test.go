package file

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/ledger/domain"
)

func record(id, profit string) domain.TradeRecord {
	return domain.TradeRecord{
		ID:          id,
		ExecutionID: "exec-" + id,
		Symbol:      "USDT",
		BuyNetwork:  "polygon",
		SellNetwork: "arbitrum",
		BuyPrice:    decimal.RequireFromString("0.975"),
		SellPrice:   decimal.RequireFromString("0.99"),
		TradeSize:   decimal.NewFromInt(5000),
		Status:      domain.TradeCompleted,
		NetProfit:   decimal.RequireFromString(profit),
		GasUsed:     180_000,
		Duration:    90 * time.Second,
		Timestamp:   time.Now().UTC(),
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	ctx := context.Background()

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if err := store.Append(ctx, record("a", "75")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, record("b", "-12")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() reopen error = %v", err)
	}
	records, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Load() = %d records, want 2", len(records))
	}
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Errorf("record order = %s, %s, want append order", records[0].ID, records[1].ID)
	}
	if !records[1].NetProfit.Equal(decimal.RequireFromString("-12")) {
		t.Errorf("NetProfit = %s, want -12", records[1].NetProfit)
	}
}

func TestStoreReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	ctx := context.Background()

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Append(ctx, record("a", "75")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	records, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Load() after reset = %d records, want 0", len(records))
	}
}

func TestStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ledger.json")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Append(context.Background(), record("a", "1")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
}

func TestStoreRejectsEmptyPath(t *testing.T) {
	if _, err := NewStore(""); err == nil {
		t.Fatal("NewStore(\"\") must fail")
	}
}
