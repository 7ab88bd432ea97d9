package watch

import (
	"context"
	"sync"
	"testing"

	"github.com/DrgGomes/cft-estoque-fast/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSnapshotter struct {
	mu       sync.Mutex
	products []model.Product
}

func (s *stubSnapshotter) Snapshot(_ context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *stubSnapshotter) set(products ...model.Product) {
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
}

type stubDispatcher struct {
	mu      sync.Mutex
	batches [][]model.Product
}

func (d *stubDispatcher) Dispatch(_ context.Context, soldOut []model.Product) error {
	d.mu.Lock()
	d.batches = append(d.batches, soldOut)
	d.mu.Unlock()
	return nil
}

func variant(name string, qty int) model.Product {
	return model.Product{ID: uuid.New(), Name: name, Color: "Preto", Size: "40", Quantity: qty}
}

func TestWatcherFirstSnapshotNeverDispatches(t *testing.T) {
	source := &stubSnapshotter{}
	sink := &stubDispatcher{}
	w := New(nil, source, sink)

	source.set(variant("already sold out", 0), variant("in stock", 5))
	require.NoError(t, w.Evaluate(context.Background()))
	assert.Empty(t, sink.batches, "startup zeros are baseline, not events")
}

func TestWatcherDispatchesOnZeroCrossing(t *testing.T) {
	source := &stubSnapshotter{}
	sink := &stubDispatcher{}
	w := New(nil, source, sink)
	ctx := context.Background()

	shoe := variant("Sapatilha 600", 3)
	boot := variant("Bota 710", 1)
	source.set(shoe, boot)
	require.NoError(t, w.Evaluate(ctx))

	shoe.Quantity = 0
	source.set(shoe, boot)
	require.NoError(t, w.Evaluate(ctx))

	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 1)
	assert.Equal(t, "Sapatilha 600", sink.batches[0][0].Name)

	// Staying at zero is not a new crossing.
	require.NoError(t, w.Evaluate(ctx))
	assert.Len(t, sink.batches, 1)
}

func TestWatcherRestockThenSellOutFiresAgain(t *testing.T) {
	source := &stubSnapshotter{}
	sink := &stubDispatcher{}
	w := New(nil, source, sink)
	ctx := context.Background()

	shoe := variant("Sapatilha 600", 2)
	source.set(shoe)
	require.NoError(t, w.Evaluate(ctx))

	shoe.Quantity = 0
	source.set(shoe)
	require.NoError(t, w.Evaluate(ctx))

	shoe.Quantity = 4
	source.set(shoe)
	require.NoError(t, w.Evaluate(ctx))

	shoe.Quantity = 0
	source.set(shoe)
	require.NoError(t, w.Evaluate(ctx))

	assert.Len(t, sink.batches, 2)
}

func TestWatcherNewProductAtZeroDoesNotDispatch(t *testing.T) {
	source := &stubSnapshotter{}
	sink := &stubDispatcher{}
	w := New(nil, source, sink)
	ctx := context.Background()

	shoe := variant("Sapatilha 600", 3)
	source.set(shoe)
	require.NoError(t, w.Evaluate(ctx))

	// A new variant appears already at zero while the existing one sells out.
	fresh := variant("Bota 710", 0)
	shoe.Quantity = 0
	source.set(shoe, fresh)
	require.NoError(t, w.Evaluate(ctx))

	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 1)
	assert.Equal(t, "Sapatilha 600", sink.batches[0][0].Name)
}
