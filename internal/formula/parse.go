package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
)

// ErrInvalidFormula is returned for unparseable formula or range strings.
var ErrInvalidFormula = errors.New("invalid formula")

// ParseFormula turns a formula such as "C6H12O6" or "C6 H12 O6" into an
// exact-count query. A trailing charge annotation ("+", "-2") is ignored.
// Repeated elements are summed.
func ParseFormula(s string) (chemcomp.FormulaQuery, error) {
	body := strings.TrimSpace(s)
	if i := strings.IndexAny(body, "+-"); i >= 0 {
		if _, err := strconv.Atoi("0" + body[i+1:]); err != nil {
			return nil, fmt.Errorf("%w: bad charge in %q", ErrInvalidFormula, s)
		}
		body = body[:i]
	}

	counts := make(map[string]int)
	runes := []rune(body)
	for i := 0; i < len(runes); {
		switch {
		case unicode.IsSpace(runes[i]):
			i++
			continue
		case !unicode.IsUpper(runes[i]):
			return nil, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidFormula, runes[i], s)
		}

		start := i
		i++
		for i < len(runes) && unicode.IsLower(runes[i]) {
			i++
		}
		el := strings.ToUpper(string(runes[start:i]))

		numStart := i
		for i < len(runes) && unicode.IsDigit(runes[i]) {
			i++
		}
		n := 1
		if i > numStart {
			v, err := strconv.Atoi(string(runes[numStart:i]))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidFormula, err)
			}
			n = v
		}
		counts[el] += n
	}

	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: empty formula", ErrInvalidFormula)
	}

	q := make(chemcomp.FormulaQuery, len(counts))
	for el, n := range counts {
		q[el] = chemcomp.Range{Min: n, Max: n}
	}
	return q, nil
}

// ParseRange parses "EL=MIN:MAX". "EL=N" is an exact count; an omitted MIN
// is 0 and an omitted MAX is unbounded.
func ParseRange(s string) (string, chemcomp.Range, error) {
	el, spec, ok := strings.Cut(strings.TrimSpace(s), "=")
	el = strings.ToUpper(strings.TrimSpace(el))
	if !ok || el == "" {
		return "", chemcomp.Range{}, fmt.Errorf("%w: expected EL=MIN:MAX, got %q", ErrInvalidFormula, s)
	}
	for _, r := range el {
		if !unicode.IsLetter(r) {
			return "", chemcomp.Range{}, fmt.Errorf("%w: bad element %q", ErrInvalidFormula, el)
		}
	}

	lo, hi, isRange := strings.Cut(spec, ":")
	if !isRange {
		n, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return "", chemcomp.Range{}, fmt.Errorf("%w: bad count in %q", ErrInvalidFormula, s)
		}
		return el, chemcomp.Range{Min: n, Max: n}, nil
	}

	r := chemcomp.Range{Min: 0, Max: math.MaxInt}
	if lo = strings.TrimSpace(lo); lo != "" {
		n, err := strconv.Atoi(lo)
		if err != nil {
			return "", chemcomp.Range{}, fmt.Errorf("%w: bad min in %q", ErrInvalidFormula, s)
		}
		r.Min = n
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		n, err := strconv.Atoi(hi)
		if err != nil {
			return "", chemcomp.Range{}, fmt.Errorf("%w: bad max in %q", ErrInvalidFormula, s)
		}
		r.Max = n
	}
	if r.Min > r.Max {
		return "", chemcomp.Range{}, fmt.Errorf("%w: min > max in %q", ErrInvalidFormula, s)
	}
	return el, r, nil
}

// ParseRanges builds a query from several "EL=MIN:MAX" entries. Later
// entries for the same element replace earlier ones.
func ParseRanges(entries []string) (chemcomp.FormulaQuery, error) {
	q := make(chemcomp.FormulaQuery, len(entries))
	for _, e := range entries {
		el, r, err := ParseRange(e)
		if err != nil {
			return nil, err
		}
		q[el] = r
	}
	return q, nil
}
