package watch

import (
	"context"

	"github.com/DrgGomes/cft-estoque-fast/internal/infra"
	"github.com/DrgGomes/cft-estoque-fast/internal/model"
	"github.com/DrgGomes/cft-estoque-fast/internal/stockdiff"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Snapshotter supplies one full variant snapshot per evaluation.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]model.Product, error)
}

// Dispatcher receives the products that just crossed to zero.
type Dispatcher interface {
	Dispatch(ctx context.Context, soldOut []model.Product) error
}

// Watcher subscribes to stock-change notifications and runs the zero-crossing
// detector over a fresh snapshot per notification. Detection is edge-based:
// the first snapshot after startup only seeds the baseline, so pre-existing
// zeros never alert.
type Watcher struct {
	rdb      *redis.Client
	products Snapshotter
	alerts   Dispatcher
	detector *stockdiff.Detector
}

func New(rdb *redis.Client, products Snapshotter, alerts Dispatcher) *Watcher {
	return &Watcher{
		rdb:      rdb,
		products: products,
		alerts:   alerts,
		detector: stockdiff.NewDetector(),
	}
}

// Run blocks until ctx is cancelled, evaluating once per published change.
func (w *Watcher) Run(ctx context.Context) error {
	// Seed the baseline before accepting notifications, so the first real
	// change is compared against startup state, not against nothing.
	if err := w.Evaluate(ctx); err != nil {
		log.Error().Err(err).Msg("watch: failed to seed baseline snapshot")
	}

	sub := w.rdb.Subscribe(ctx, infra.StockChangedChannel)
	defer sub.Close()

	log.Info().Str("channel", infra.StockChangedChannel).Msg("stock watcher started")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			if err := w.Evaluate(ctx); err != nil {
				log.Error().Err(err).Msg("watch: evaluation failed")
			}
		}
	}
}

// Evaluate loads a fresh snapshot, advances the detector and dispatches
// alerts for any product that just sold out.
func (w *Watcher) Evaluate(ctx context.Context) error {
	products, err := w.products.Snapshot(ctx)
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]model.Product, len(products))
	quantities := make(map[uuid.UUID]int, len(products))
	for _, p := range products {
		byID[p.ID] = p
		quantities[p.ID] = p.Quantity
	}

	crossed := w.detector.Evaluate(quantities)
	if len(crossed) == 0 {
		return nil
	}

	soldOut := make([]model.Product, 0, len(crossed))
	for _, id := range crossed {
		if p, ok := byID[id]; ok {
			soldOut = append(soldOut, p)
		}
	}
	return w.alerts.Dispatch(ctx, soldOut)
}
