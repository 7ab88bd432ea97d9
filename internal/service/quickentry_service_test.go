package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DrgGomes/cft-estoque-fast/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeDecoder struct {
	codes  chan string
	mu     sync.Mutex
	closed bool
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{codes: make(chan string)}
}

func (d *fakeDecoder) Codes() <-chan string { return d.codes }

func (d *fakeDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		close(d.codes)
	}
	return nil
}

func (d *fakeDecoder) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func quickEntryFixture(t *testing.T) (QuickEntryService, *stubProductRepo, *stubMovementRepo, *fakeClock, *model.Product, *model.Product) {
	t.Helper()
	shoe := &model.Product{Name: "Sapatilha Preta 40", SKU: strPtr("X1"), Barcode: strPtr("7890001"), Quantity: 10}
	boot := &model.Product{Name: "Bota Café 38", SKU: strPtr("X2"), Quantity: 4}
	repo := newStubProductRepo(shoe, boot)
	movements := &stubMovementRepo{}
	clock := newFakeClock()
	svc := NewQuickEntryService(repo, newTestLedger(repo, movements), 2500*time.Millisecond, 3*time.Second, clock.now)
	return svc, repo, movements, clock, shoe, boot
}

func mustParseID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func TestQuickEntryDebounceSuppressesRepeatWithinWindow(t *testing.T) {
	svc, _, _, clock, _, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)
	ctx := context.Background()

	fb, err := svc.Scan(ctx, id, "X1")
	require.NoError(t, err)
	assert.Equal(t, "accepted", fb.Status)
	assert.Equal(t, "Sapatilha Preta 40", fb.ProductName)

	clock.advance(200 * time.Millisecond)
	fb, err = svc.Scan(ctx, id, "X1")
	require.NoError(t, err)
	assert.Equal(t, "duplicate", fb.Status)

	fb, err = svc.Scan(ctx, id, "X2")
	require.NoError(t, err)
	assert.Equal(t, "accepted", fb.Status)

	current, err := svc.GetSession(id)
	require.NoError(t, err)
	require.Len(t, current.Items, 2)
	// Most recent first.
	assert.Equal(t, "X2", current.Items[0].SKU)
	assert.Equal(t, 1, current.Items[0].Count)
	assert.Equal(t, "X1", current.Items[1].SKU)
	assert.Equal(t, 1, current.Items[1].Count)
}

func TestQuickEntryRepeatBeyondWindowCountsTwice(t *testing.T) {
	svc, _, _, clock, _, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)
	ctx := context.Background()

	_, err := svc.Scan(ctx, id, "X1")
	require.NoError(t, err)
	clock.advance(2600 * time.Millisecond)
	fb, err := svc.Scan(ctx, id, "X1")
	require.NoError(t, err)
	assert.Equal(t, "accepted", fb.Status)

	current, _ := svc.GetSession(id)
	require.Len(t, current.Items, 1)
	assert.Equal(t, 2, current.Items[0].Count)
}

func TestQuickEntryDebounceAnchorStaysOnAcceptedScan(t *testing.T) {
	svc, _, _, clock, _, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)
	ctx := context.Background()

	_, err := svc.Scan(ctx, id, "X1")
	require.NoError(t, err)

	// Suppressed repeats do not push the window forward.
	clock.advance(2 * time.Second)
	fb, _ := svc.Scan(ctx, id, "X1")
	assert.Equal(t, "duplicate", fb.Status)

	clock.advance(2 * time.Second) // 4 s after the accepted scan
	fb, _ = svc.Scan(ctx, id, "X1")
	assert.Equal(t, "accepted", fb.Status)

	current, _ := svc.GetSession(id)
	assert.Equal(t, 2, current.Items[0].Count)
}

func TestQuickEntryUnknownCodeLeavesSessionUntouched(t *testing.T) {
	svc, _, _, _, _, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)

	fb, err := svc.Scan(context.Background(), id, "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, "unknown", fb.Status)
	assert.Empty(t, fb.ProductName)

	current, _ := svc.GetSession(id)
	assert.Empty(t, current.Items)
}

func TestQuickEntryScanResolvesBarcodeAndTrimsWhitespace(t *testing.T) {
	svc, _, _, _, _, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)

	fb, err := svc.Scan(context.Background(), id, "  7890001 \n")
	require.NoError(t, err)
	assert.Equal(t, "accepted", fb.Status)
	assert.Equal(t, "7890001", fb.Code)
	assert.Equal(t, "Sapatilha Preta 40", fb.ProductName)
}

func TestQuickEntryUpdateAndRemoveItem(t *testing.T) {
	svc, _, _, _, shoe, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)
	ctx := context.Background()

	_, err := svc.Scan(ctx, id, "X1")
	require.NoError(t, err)

	current, err := svc.UpdateItem(id, shoe.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, current.Items[0].Count)

	current, err = svc.UpdateItem(id, shoe.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, current.Items, "count zero removes the pending entry")

	_, err = svc.RemoveItem(id, shoe.ID)
	assert.Error(t, err, "entry is already gone")
}

func TestQuickEntryCommitAppliesOneBatch(t *testing.T) {
	svc, repo, movements, clock, shoe, boot := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)
	ctx := context.Background()

	_, err := svc.Scan(ctx, id, "X1")
	require.NoError(t, err)
	clock.advance(3 * time.Second)
	_, err = svc.Scan(ctx, id, "X1")
	require.NoError(t, err)
	_, err = svc.Scan(ctx, id, "X2")
	require.NoError(t, err)

	_, err = svc.Review(id)
	require.NoError(t, err)

	resp, err := svc.Commit(ctx, id)
	require.NoError(t, err)
	require.Len(t, resp.Movements, 2, "one movement per variant, not per physical scan")

	assert.Equal(t, 12, repo.quantity(shoe.ID)) // 10 + 2
	assert.Equal(t, 5, repo.quantity(boot.ID))  // 4 + 1
	assert.Equal(t, 2, movements.count())

	_, err = svc.GetSession(id)
	assert.ErrorIs(t, err, ErrSessionNotFound, "session ends on successful commit")
}

func TestQuickEntryCommitFailurePreservesSession(t *testing.T) {
	svc, repo, movements, _, shoe, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)
	ctx := context.Background()

	_, err := svc.Scan(ctx, id, "X1")
	require.NoError(t, err)

	// Product disappears between scan and commit.
	require.NoError(t, repo.Delete(ctx, shoe.ID))

	_, err = svc.Commit(ctx, id)
	require.Error(t, err)
	assert.Zero(t, movements.count())

	current, err := svc.GetSession(id)
	require.NoError(t, err, "session survives a failed commit")
	assert.Equal(t, StateReviewing, current.State)
	require.Len(t, current.Items, 1)
	assert.Equal(t, 1, current.Items[0].Count)
}

func TestQuickEntryCommitEmptySession(t *testing.T) {
	svc, _, _, _, _, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)

	_, err := svc.Commit(context.Background(), id)
	require.Error(t, err)

	current, err := svc.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, StateScanning, current.State)
}

func TestQuickEntryDecoderFeedsScans(t *testing.T) {
	svc, _, _, _, _, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)
	ctx := context.Background()

	dec := newFakeDecoder()
	require.NoError(t, svc.AttachDecoder(ctx, id, dec))

	dec.codes <- "X1"
	require.Eventually(t, func() bool {
		current, err := svc.GetSession(id)
		return err == nil && len(current.Items) == 1
	}, time.Second, 5*time.Millisecond)

	// A second decoder on the same session is rejected.
	err := svc.AttachDecoder(ctx, id, newFakeDecoder())
	assert.Error(t, err)
}

func TestQuickEntryReviewClosesDecoder(t *testing.T) {
	svc, _, _, _, _, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)
	ctx := context.Background()

	dec := newFakeDecoder()
	require.NoError(t, svc.AttachDecoder(ctx, id, dec))

	_, err := svc.Review(id)
	require.NoError(t, err)

	require.Eventually(t, dec.isClosed, time.Second, 5*time.Millisecond,
		"leaving the scanning state must release the decoder")

	_, err = svc.Scan(ctx, id, "X1")
	assert.ErrorIs(t, err, ErrNotScanning)
}

func TestQuickEntryCancelClosesDecoderAndDropsSession(t *testing.T) {
	svc, _, _, _, _, _ := quickEntryFixture(t)
	sess := svc.StartSession("user-1")
	id := mustParseID(t, sess.ID)
	ctx := context.Background()

	dec := newFakeDecoder()
	require.NoError(t, svc.AttachDecoder(ctx, id, dec))
	_, err := svc.Scan(ctx, id, "X1")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(id))
	require.Eventually(t, dec.isClosed, time.Second, 5*time.Millisecond)

	_, err = svc.GetSession(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuickEntrySessionNotFound(t *testing.T) {
	svc, _, _, _, _, _ := quickEntryFixture(t)
	_, err := svc.Scan(context.Background(), uuid.New(), "X1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
