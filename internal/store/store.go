// Package store persists fetched daily bars so closed historical ranges are
// served without another provider round trip.
package store

import (
	"context"
	"time"

	"StockLens/internal/model"
)

// BarCache stores bars for closed ranges together with the ranges known to
// be complete.
type BarCache interface {
	Covered(ctx context.Context, code string, start, end time.Time) (bool, error)
	Bars(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, error)
	Put(ctx context.Context, code string, start, end time.Time, bars []model.OHLCV) error
	Close() error
}

// NoopBarCache never covers anything. Used when SQLite is not configured.
type NoopBarCache struct{}

func NewNoopBarCache() *NoopBarCache { return &NoopBarCache{} }

func (NoopBarCache) Covered(context.Context, string, time.Time, time.Time) (bool, error) {
	return false, nil
}

func (NoopBarCache) Bars(context.Context, string, time.Time, time.Time) ([]model.OHLCV, error) {
	return nil, nil
}

func (NoopBarCache) Put(context.Context, string, time.Time, time.Time, []model.OHLCV) error {
	return nil
}

func (NoopBarCache) Close() error { return nil }
