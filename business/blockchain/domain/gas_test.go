package domain

import (
	"math/big"
	"testing"
)

func TestGasPriceGwei(t *testing.T) {
	tests := []struct {
		name string
		wei  *big.Int
		want float64
	}{
		{"one gwei", big.NewInt(1_000_000_000), 1},
		{"thirty gwei", big.NewInt(30_000_000_000), 30},
		{"sub gwei", big.NewInt(500_000_000), 0.5},
		{"zero", big.NewInt(0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewGasPrice(1, tt.wei)
			if got := p.Gwei(); got != tt.want {
				t.Errorf("Gwei() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewGasEstimate(t *testing.T) {
	price := NewGasPrice(42161, big.NewInt(2_000_000_000)) // 2 gwei
	est := NewGasEstimate(150_000, price)

	wantWei := big.NewInt(300_000_000_000_000) // 150k * 2 gwei
	if est.TotalWei.Cmp(wantWei) != 0 {
		t.Errorf("TotalWei = %s, want %s", est.TotalWei, wantWei)
	}
	if got := est.TotalGwei(); got != 300_000 {
		t.Errorf("TotalGwei() = %v, want 300000", got)
	}
}

func TestConnectionStateString(t *testing.T) {
	if StateConnected.String() != "connected" {
		t.Errorf("StateConnected.String() = %q", StateConnected.String())
	}
	if StatePolling.String() != "polling" {
		t.Errorf("StatePolling.String() = %q", StatePolling.String())
	}
	if StateDisconnected.String() != "disconnected" {
		t.Errorf("StateDisconnected.String() = %q", StateDisconnected.String())
	}
}
