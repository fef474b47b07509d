// Package postgres persists the trade ledger in PostgreSQL.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/ledger/app"
	"github.com/ivoros/chainarb/business/ledger/domain"
	"github.com/ivoros/chainarb/internal/apperror"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id                  TEXT PRIMARY KEY,
	execution_id        TEXT NOT NULL,
	symbol              TEXT NOT NULL,
	buy_network         TEXT NOT NULL,
	sell_network        TEXT NOT NULL,
	buy_price           NUMERIC NOT NULL,
	sell_price          NUMERIC NOT NULL,
	trade_size          NUMERIC NOT NULL,
	status              TEXT NOT NULL,
	net_profit          NUMERIC NOT NULL,
	gas_used            BIGINT NOT NULL,
	duration_ns         BIGINT NOT NULL,
	manual_intervention BOOLEAN NOT NULL,
	error               TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL
)`

// Store is a pgx-backed ledger store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to dsn and ensures the trades table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed,
			apperror.WithMessage("connecting to postgres"))
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed,
			apperror.WithMessage("creating trades table"))
	}
	return &Store{pool: pool}, nil
}

// Append inserts one trade record.
func (s *Store) Append(ctx context.Context, r domain.TradeRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO trades (
			id, execution_id, symbol, buy_network, sell_network,
			buy_price, sell_price, trade_size, status, net_profit,
			gas_used, duration_ns, manual_intervention, error, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		r.ID, r.ExecutionID, r.Symbol, r.BuyNetwork, r.SellNetwork,
		r.BuyPrice.String(), r.SellPrice.String(), r.TradeSize.String(),
		string(r.Status), r.NetProfit.String(),
		int64(r.GasUsed), int64(r.Duration), r.ManualIntervention, r.Error, r.Timestamp)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeLedgerStoreFailed,
			apperror.WithContext("trade_id", r.ID))
	}
	return nil
}

// Load returns all records in append order.
func (s *Store) Load(ctx context.Context) ([]domain.TradeRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, execution_id, symbol, buy_network, sell_network,
			buy_price, sell_price, trade_size, status, net_profit,
			gas_used, duration_ns, manual_intervention, error, created_at
		FROM trades ORDER BY created_at ASC`)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
	}
	defer rows.Close()

	var records []domain.TradeRecord
	for rows.Next() {
		var (
			r                    domain.TradeRecord
			buyPrice, sellPrice  string
			tradeSize, netProfit string
			status               string
			gasUsed, durationNS  int64
		)
		if err := rows.Scan(&r.ID, &r.ExecutionID, &r.Symbol, &r.BuyNetwork, &r.SellNetwork,
			&buyPrice, &sellPrice, &tradeSize, &status, &netProfit,
			&gasUsed, &durationNS, &r.ManualIntervention, &r.Error, &r.Timestamp); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
		}
		if r.BuyPrice, err = decimal.NewFromString(buyPrice); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
		}
		if r.SellPrice, err = decimal.NewFromString(sellPrice); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
		}
		if r.TradeSize, err = decimal.NewFromString(tradeSize); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
		}
		if r.NetProfit, err = decimal.NewFromString(netProfit); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
		}
		r.Status = domain.TradeStatus(status)
		r.GasUsed = uint64(gasUsed)
		r.Duration = time.Duration(durationNS)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
	}
	return records, nil
}

// Reset deletes every record.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM trades`); err != nil {
		return apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

var _ app.Store = (*Store)(nil)
