// Package grid generates variant rows from the cartesian product of a color
// set and a size set. Everything here is pure: no storage, no side effects —
// the bulk-create path feeds the output to the ledger service.
package grid

import "strings"

// Separator joins the normalized parts of a derived SKU.
const Separator = "-"

// Row is one generated variant: a (color, size) pair with its derived SKU and
// a user-editable barcode placeholder. Rows are transient; they only seed
// product creation.
type Row struct {
	Color   string `json:"color"`
	Size    string `json:"size"`
	SKU     string `json:"sku"`
	Barcode string `json:"barcode"`
}

// OrderedSet keeps values in insertion order, rejects duplicates
// (case-sensitive exact match) and supports removal by value.
type OrderedSet struct {
	values []string
	index  map[string]struct{}
}

func NewOrderedSet(values ...string) *OrderedSet {
	s := &OrderedSet{index: make(map[string]struct{})}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add appends v, returning false if it is already present.
func (s *OrderedSet) Add(v string) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.values = append(s.values, v)
	return true
}

// Remove deletes v by value, returning false if absent.
func (s *OrderedSet) Remove(v string) bool {
	if _, ok := s.index[v]; !ok {
		return false
	}
	delete(s.index, v)
	for i, existing := range s.values {
		if existing == v {
			s.values = append(s.values[:i], s.values[i+1:]...)
			break
		}
	}
	return true
}

func (s *OrderedSet) Len() int { return len(s.values) }

// Values returns the elements in insertion order. The returned slice is a copy.
func (s *OrderedSet) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// normalize uppercases and strips all whitespace from a SKU part.
func normalize(part string) string {
	return strings.ToUpper(strings.Join(strings.Fields(part), ""))
}

// DeriveSKU builds BASE-COLOR-SIZE from normalized parts. If any part is
// empty after normalization the SKU is empty — callers must block save on
// empty SKUs.
func DeriveSKU(base, color, size string) string {
	b, c, z := normalize(base), normalize(color), normalize(size)
	if b == "" || c == "" || z == "" {
		return ""
	}
	return b + Separator + c + Separator + z
}

// Generate expands colors × sizes into rows, color-major then size-minor, in
// the insertion order of both sets. Rows whose (color, size) pair existed in
// previous keep the barcode that was typed there; new pairs start empty.
func Generate(baseSKU string, colors, sizes *OrderedSet, previous []Row) []Row {
	kept := make(map[[2]string]string, len(previous))
	for _, row := range previous {
		if row.Barcode != "" {
			kept[[2]string{row.Color, row.Size}] = row.Barcode
		}
	}

	rows := make([]Row, 0, colors.Len()*sizes.Len())
	for _, color := range colors.Values() {
		for _, size := range sizes.Values() {
			rows = append(rows, Row{
				Color:   color,
				Size:    size,
				SKU:     DeriveSKU(baseSKU, color, size),
				Barcode: kept[[2]string{color, size}],
			})
		}
	}
	return rows
}
