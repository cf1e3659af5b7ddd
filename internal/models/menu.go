package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uptrace/bun"
)

// MenuEntry configures one ticket category: a contiguous numeric ID range
// ("start-end", inclusive) and the seats granted per ticket. Alloc and
// TotalCapacity are derived from Series and recomputed on every edit; the
// stored values are never trusted as source of truth.
type MenuEntry struct {
	bun.BaseModel `bun:"table:menu"`

	Type          string `bun:"type" json:"type"`
	Category      string `bun:"category" json:"category"`
	Admit         int    `bun:"admit" json:"admit"`
	Seq           int    `bun:"seq" json:"seq"`
	Series        string `bun:"series" json:"series"`
	Alloc         int    `bun:"alloc" json:"alloc"`
	TotalCapacity int    `bun:"total_capacity" json:"total_capacity"`
}

// InvalidRangeError reports a malformed series on a menu row. Row is the
// 1-based position in the submitted menu.
type InvalidRangeError struct {
	Row    int
	Series string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("row %d: invalid series %q: %s", e.Row, e.Series, e.Reason)
}

// MenuValidationError collects every offending row so a menu save can be
// rejected as one itemized batch instead of failing on the first bad row.
type MenuValidationError struct {
	Rows []*InvalidRangeError
}

func (e *MenuValidationError) Error() string {
	msgs := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		msgs[i] = r.Error()
	}
	return fmt.Sprintf("menu rejected: %s", strings.Join(msgs, "; "))
}

// Range parses the entry's series into its inclusive integer bounds.
func (m MenuEntry) Range() (start, end int, err error) {
	series := strings.TrimSpace(m.Series)
	sep := strings.Index(series, "-")
	if sep < 0 {
		return 0, 0, fmt.Errorf("series must be in 'start-end' format")
	}
	start, err = strconv.Atoi(strings.TrimSpace(series[:sep]))
	if err != nil {
		return 0, 0, fmt.Errorf("start %q is not a number", series[:sep])
	}
	end, err = strconv.Atoi(strings.TrimSpace(series[sep+1:]))
	if err != nil {
		return 0, 0, fmt.Errorf("end %q is not a number", series[sep+1:])
	}
	if end < start {
		return 0, 0, fmt.Errorf("end %d is before start %d", end, start)
	}
	return start, end, nil
}

// Recompute refreshes the derived Alloc and TotalCapacity fields.
func (m *MenuEntry) Recompute() error {
	start, end, err := m.Range()
	if err != nil {
		return err
	}
	m.Alloc = end - start + 1
	m.TotalCapacity = m.Alloc * m.Admit
	return nil
}

// ValidateMenu recomputes derived fields across the whole menu and returns
// every malformed row at once. A non-nil error means the save must be
// rejected without touching tickets or menu.
func ValidateMenu(entries []MenuEntry) error {
	var bad []*InvalidRangeError
	for i := range entries {
		if err := entries[i].Recompute(); err != nil {
			bad = append(bad, &InvalidRangeError{
				Row:    i + 1,
				Series: entries[i].Series,
				Reason: err.Error(),
			})
		}
	}
	if len(bad) > 0 {
		return &MenuValidationError{Rows: bad}
	}
	return nil
}

// CategoriesForType lists the distinct category names configured under a
// type, in menu order.
func CategoriesForType(entries []MenuEntry, ticketType string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range entries {
		if m.Type != ticketType || m.Category == "" || seen[m.Category] {
			continue
		}
		seen[m.Category] = true
		out = append(out, m.Category)
	}
	return out
}
