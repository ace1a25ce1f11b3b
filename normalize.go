package gridloader

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// NormalizeColumn maps a raw source label to a warehouse-safe identifier:
// lowercased, with every run of characters outside [a-z0-9] collapsed to a
// single underscore and leading/trailing underscores stripped. The mapping
// is a pure function of the label and is idempotent.
//
// A label that reduces to nothing (e.g. all punctuation) returns
// ErrEmptyColumn; callers substitute a positional fallback instead of
// dropping the field.
func NormalizeColumn(label string) (string, error) {
	var b strings.Builder
	b.Grow(len(label))

	pendingSep := false
	for _, r := range strings.ToLower(label) {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}

	if b.Len() == 0 {
		return "", ErrEmptyColumn
	}

	return b.String(), nil
}

// CanonicalColumns normalizes every label in column order and resolves the
// two degenerate cases: labels that normalize to nothing become
// column_<position> (1-based), and labels colliding on the same canonical
// name get a numeric suffix (_2, _3, ...) in column order. The result is
// total and deterministic for a given label sequence.
func CanonicalColumns(ctx context.Context, labels []string) []string {
	l := log.Ctx(ctx)

	cols := make([]string, len(labels))
	assigned := make(map[string]bool, len(labels))

	for i, label := range labels {
		name, err := NormalizeColumn(label)
		if err != nil {
			name = fmt.Sprintf("column_%d", i+1)
			l.Warn().Str("label", label).Str("fallback", name).
				Msg("label normalizes to empty identifier, using positional fallback")
		}

		// A suffixed name can itself collide with a later label's normal
		// form (unit names are arbitrary operator strings), so every
		// candidate is checked against the names assigned so far.
		if assigned[name] {
			base := name
			for n := 2; ; n++ {
				candidate := fmt.Sprintf("%s_%d", base, n)
				if !assigned[candidate] {
					name = candidate
					break
				}
			}
			l.Warn().Str("label", label).Str("column", name).
				Msg("canonical column collision, disambiguating with suffix")
		}

		assigned[name] = true
		cols[i] = name
	}

	return cols
}
