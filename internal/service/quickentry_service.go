package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
	"github.com/DrgGomes/cft-estoque-fast/internal/model"
	"github.com/DrgGomes/cft-estoque-fast/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session states. A session not in the map is the implicit Idle state.
const (
	StateScanning   = "scanning"
	StateReviewing  = "reviewing"
	StateCommitting = "committing"
)

var (
	ErrSessionNotFound = errors.New("quick-entry session not found")
	ErrNotScanning     = errors.New("session is not scanning")
	ErrCommitInFlight  = errors.New("a commit for this session is already in flight")
)

// Decoder is the barcode-decoding capability: it yields decoded strings while
// active. The service is agnostic to the decoding technique; it only consumes
// the strings and guarantees Close is called whenever the session leaves the
// scanning state, by any path.
type Decoder interface {
	Codes() <-chan string
	Close() error
}

// scannedItem pairs a resolved product with its accumulated pending count.
type scannedItem struct {
	product model.Product
	count   int
}

type session struct {
	id    uuid.UUID
	owner string
	state string
	// items are kept most-recent-first.
	items []*scannedItem
	// Debounce state: raw text of the last accepted code and when it was
	// accepted. The key is the code text, not the resolved product — two
	// different codes for the same variant in quick succession both count.
	lastCode   string
	lastScanAt time.Time
	decoder    Decoder
}

// QuickEntryService aggregates a noisy stream of scanned/typed codes into a
// clean per-variant count, committed to the ledger once per variant per
// session rather than once per physical scan.
type QuickEntryService interface {
	StartSession(ownerID string) *dto.SessionResponse
	GetSession(sessionID uuid.UUID) (*dto.SessionResponse, error)
	// Scan resolves one code. Unknown and debounced codes never alter
	// aggregation state; the returned feedback is advisory only.
	Scan(ctx context.Context, sessionID uuid.UUID, rawCode string) (*dto.ScanFeedback, error)
	// AttachDecoder consumes the capability's decoded strings until the
	// session leaves Scanning. The decoder is always closed on the way out.
	AttachDecoder(ctx context.Context, sessionID uuid.UUID, dec Decoder) error
	UpdateItem(sessionID, productID uuid.UUID, count int) (*dto.SessionResponse, error)
	RemoveItem(sessionID, productID uuid.UUID) (*dto.SessionResponse, error)
	Review(sessionID uuid.UUID) (*dto.SessionResponse, error)
	// Commit applies every pending entry as one atomic batch. On failure the
	// session and all pending entries survive for retry.
	Commit(ctx context.Context, sessionID uuid.UUID) (*dto.CommitResponse, error)
	Cancel(sessionID uuid.UUID) error
}

type quickEntryService struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session

	products    repository.ProductRepository
	ledger      LedgerService
	debounce    time.Duration
	feedbackTTL time.Duration
	now         func() time.Time
}

// NewQuickEntryService wires the aggregator. The clock is injectable so
// debounce behavior is testable without sleeping.
func NewQuickEntryService(
	products repository.ProductRepository,
	ledger LedgerService,
	debounce, feedbackTTL time.Duration,
	now func() time.Time,
) QuickEntryService {
	if now == nil {
		now = time.Now
	}
	return &quickEntryService{
		sessions:    make(map[uuid.UUID]*session),
		products:    products,
		ledger:      ledger,
		debounce:    debounce,
		feedbackTTL: feedbackTTL,
		now:         now,
	}
}

func (s *quickEntryService) StartSession(ownerID string) *dto.SessionResponse {
	sess := &session{id: uuid.New(), owner: ownerID, state: StateScanning}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	resp := sessionToResponse(sess)
	s.mu.Unlock()

	return resp
}

func (s *quickEntryService) GetSession(sessionID uuid.UUID) (*dto.SessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sessionToResponse(sess), nil
}

func (s *quickEntryService) Scan(ctx context.Context, sessionID uuid.UUID, rawCode string) (*dto.ScanFeedback, error) {
	code := strings.TrimSpace(rawCode)
	now := s.now()

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if sess.state != StateScanning {
		s.mu.Unlock()
		return nil, ErrNotScanning
	}
	s.mu.Unlock()

	// Resolution is exact-match, case-insensitive, against sku and barcode.
	product, err := s.products.FindByCode(ctx, code)
	if err != nil {
		return s.feedback("unknown", code, "", now), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Session may have moved on while we hit the store.
	if sess.state != StateScanning {
		return nil, ErrNotScanning
	}

	// Debounce: identical to the immediately preceding accepted code, inside
	// the window — camera decoders emit the same frame value several times
	// per physical scan. The anchor stays at the accepted scan, so a stream
	// of repeats is re-accepted once the window elapses.
	if code == sess.lastCode && now.Sub(sess.lastScanAt) < s.debounce {
		return s.feedback("duplicate", code, product.Name, now), nil
	}

	sess.lastCode = code
	sess.lastScanAt = now

	for i, item := range sess.items {
		if item.product.ID == product.ID {
			item.count++
			// Most-recent-first: bubble the touched entry to the top.
			if i > 0 {
				sess.items = append(sess.items[:i], sess.items[i+1:]...)
				sess.items = append([]*scannedItem{item}, sess.items...)
			}
			return s.feedback("accepted", code, product.Name, now), nil
		}
	}
	sess.items = append([]*scannedItem{{product: *product, count: 1}}, sess.items...)
	return s.feedback("accepted", code, product.Name, now), nil
}

func (s *quickEntryService) AttachDecoder(ctx context.Context, sessionID uuid.UUID, dec Decoder) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if sess.state != StateScanning {
		s.mu.Unlock()
		return ErrNotScanning
	}
	if sess.decoder != nil {
		s.mu.Unlock()
		return errors.New("a decoder is already attached to this session")
	}
	sess.decoder = dec
	s.mu.Unlock()

	go func() {
		// The decoder must be torn down when the session leaves Scanning by
		// any path; transitions close it, which ends this loop too.
		defer s.detachDecoder(sessionID, dec)
		for {
			select {
			case <-ctx.Done():
				return
			case code, open := <-dec.Codes():
				if !open {
					return
				}
				if _, err := s.Scan(ctx, sessionID, code); err != nil {
					if errors.Is(err, ErrNotScanning) || errors.Is(err, ErrSessionNotFound) {
						return
					}
					log.Warn().Err(err).Msg("quickentry: decoder scan failed")
				}
			}
		}
	}()
	return nil
}

// detachDecoder closes dec and clears it from the session if still attached.
// Safe to call from both the consumer goroutine and state transitions.
func (s *quickEntryService) detachDecoder(sessionID uuid.UUID, dec Decoder) {
	s.mu.Lock()
	if sess, ok := s.sessions[sessionID]; ok && sess.decoder == dec {
		sess.decoder = nil
	}
	s.mu.Unlock()

	if err := dec.Close(); err != nil {
		log.Warn().Err(err).Msg("quickentry: decoder close failed")
	}
}

// teardownDecoderLocked closes the session's decoder, if any. Caller holds mu.
func (s *quickEntryService) teardownDecoderLocked(sess *session) {
	if sess.decoder == nil {
		return
	}
	dec := sess.decoder
	sess.decoder = nil
	go func() {
		if err := dec.Close(); err != nil {
			log.Warn().Err(err).Msg("quickentry: decoder close failed")
		}
	}()
}

func (s *quickEntryService) UpdateItem(sessionID, productID uuid.UUID, count int) (*dto.SessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.state == StateCommitting {
		return nil, ErrCommitInFlight
	}

	for i, item := range sess.items {
		if item.product.ID == productID {
			if count <= 0 {
				// Decrementing to zero removes the entry.
				sess.items = append(sess.items[:i], sess.items[i+1:]...)
			} else {
				item.count = count
			}
			return sessionToResponse(sess), nil
		}
	}
	return nil, errors.New("no pending entry for this product")
}

func (s *quickEntryService) RemoveItem(sessionID, productID uuid.UUID) (*dto.SessionResponse, error) {
	return s.UpdateItem(sessionID, productID, 0)
}

func (s *quickEntryService) Review(sessionID uuid.UUID) (*dto.SessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	switch sess.state {
	case StateCommitting:
		return nil, ErrCommitInFlight
	case StateScanning:
		s.teardownDecoderLocked(sess)
		sess.state = StateReviewing
	}
	return sessionToResponse(sess), nil
}

func (s *quickEntryService) Commit(ctx context.Context, sessionID uuid.UUID) (*dto.CommitResponse, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if sess.state == StateCommitting {
		s.mu.Unlock()
		return nil, ErrCommitInFlight
	}
	if len(sess.items) == 0 {
		s.mu.Unlock()
		return nil, errors.New("nothing to commit")
	}
	if sess.state == StateScanning {
		s.teardownDecoderLocked(sess)
	}
	sess.state = StateCommitting

	adjustments := make([]Adjustment, len(sess.items))
	for i, item := range sess.items {
		adjustments[i] = Adjustment{ProductID: item.product.ID, Delta: item.count}
	}
	s.mu.Unlock()

	// The commit is uninterruptible: the session stays in Committing (and
	// rejects concurrent commits) until the ledger resolves.
	movements, err := s.ledger.Apply(ctx, adjustments)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Pending entries are preserved so the user can retry without
		// re-scanning.
		sess.state = StateReviewing
		return nil, err
	}

	delete(s.sessions, sessionID)

	resp := &dto.CommitResponse{Movements: make([]dto.MovementResponse, len(movements))}
	for i, m := range movements {
		resp.Movements[i] = MovementToResponse(&m)
	}
	return resp, nil
}

func (s *quickEntryService) Cancel(sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if sess.state == StateCommitting {
		return ErrCommitInFlight
	}
	s.teardownDecoderLocked(sess)
	delete(s.sessions, sessionID)
	return nil
}

func (s *quickEntryService) feedback(status, code, productName string, now time.Time) *dto.ScanFeedback {
	return &dto.ScanFeedback{
		Status:      status,
		Code:        code,
		ProductName: productName,
		ExpiresAt:   now.Add(s.feedbackTTL).Format(time.RFC3339),
	}
}

func sessionToResponse(sess *session) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:    sess.id.String(),
		State: sess.state,
		Items: make([]dto.ScannedItemResponse, len(sess.items)),
	}
	for i, item := range sess.items {
		sku := ""
		if item.product.SKU != nil {
			sku = *item.product.SKU
		}
		resp.Items[i] = dto.ScannedItemResponse{
			ProductID: item.product.ID.String(),
			Name:      item.product.Name,
			SKU:       sku,
			Color:     item.product.Color,
			Size:      item.product.Size,
			Count:     item.count,
		}
	}
	return resp
}
