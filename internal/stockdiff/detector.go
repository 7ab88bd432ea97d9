// Package stockdiff decides, from consecutive snapshots of the product
// collection, which products just sold out. The detector owns the previous
// snapshot explicitly — no ambient globals — so tests can seed and inspect it.
package stockdiff

import "github.com/google/uuid"

// Detector compares consecutive id→quantity snapshots and reports
// zero-crossings: quantity was > 0 in the previous snapshot and is 0 now.
//
// Not safe for concurrent use; callers invoke Evaluate once per received
// collection update from a single goroutine.
type Detector struct {
	prev   map[uuid.UUID]int
	seeded bool
}

func NewDetector() *Detector {
	return &Detector{}
}

// Seeded reports whether a baseline snapshot has been recorded.
func (d *Detector) Seeded() bool { return d.seeded }

// Evaluate compares current against the retained previous snapshot and
// returns the ids that crossed to zero, then replaces the baseline.
//
// The first call only seeds the baseline and returns nothing: a product that
// is absent from the previous snapshot (initial load, or created between
// snapshots) never fires, even at quantity 0 — absence is distinct from
// "was positive". Ids missing from current (deleted) are dropped silently.
// The baseline is replaced only after the comparison completes.
func (d *Detector) Evaluate(current map[uuid.UUID]int) []uuid.UUID {
	var crossed []uuid.UUID
	if d.seeded {
		for id, qty := range current {
			if prevQty, ok := d.prev[id]; ok && prevQty > 0 && qty == 0 {
				crossed = append(crossed, id)
			}
		}
	}

	next := make(map[uuid.UUID]int, len(current))
	for id, qty := range current {
		next[id] = qty
	}
	d.prev = next
	d.seeded = true

	return crossed
}

// Reset discards the baseline; the next Evaluate seeds again without firing.
// Used when the subscription is re-established after a corrupt or lost state.
func (d *Detector) Reset() {
	d.prev = nil
	d.seeded = false
}
