package chemcomp

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// ChargeSuffix renders a formal charge as a formula annotation:
// "" for 0, "+" / "-" for ±1, and sign plus magnitude otherwise.
func ChargeSuffix(charge int) string {
	if charge == 0 {
		return ""
	}
	sign := "+"
	mag := charge
	if charge < 0 {
		sign = "-"
		mag = -charge
	}
	if mag > 1 {
		return sign + strconv.Itoa(mag)
	}
	return sign
}

// ParseCharge parses a formal charge field. Empty, "." and "?" mean 0.
func ParseCharge(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == "?" {
		return 0, nil
	}
	c, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCharge, s)
	}
	return c, nil
}

// IsAmbiguous interprets a pdbx_ambiguous_flag value.
func IsAmbiguous(flag string) bool {
	switch strings.ToUpper(strings.TrimSpace(flag)) {
	case "Y", "YES":
		return true
	}
	return false
}

// Extract derives the descriptor record for one definition. The returned id is
// the identity the definition claims. Descriptors of unrecognized kinds are
// logged and dropped; they never fail the extraction.
func Extract(def *Definition) (string, *DescriptorRecord, error) {
	if def == nil || def.ChemComp == nil || def.ChemComp.ID == "" {
		return "", nil, ErrNoIdentity
	}
	cc := def.ChemComp
	id := cc.ID

	charge, err := ParseCharge(cc.FormalCharge)
	if err != nil {
		return id, nil, err
	}

	rec := &DescriptorRecord{
		Formula:    strings.ReplaceAll(cc.Formula, " ", "") + ChargeSuffix(charge),
		TypeCounts: make(map[string]int),
		Ambiguous:  IsAmbiguous(cc.AmbiguousFlag),
	}

	// Every atom is counted so the counts sum to the atom count; an atom
	// without a symbol is counted under "".
	for i := range def.Atoms {
		sym := strings.ToUpper(strings.TrimSpace(def.Atoms[i].TypeSymbol))
		if sym == "" {
			slog.Warn("atom has empty type symbol",
				slog.String("id", id),
				slog.String("atom", def.Atoms[i].AtomID))
		}
		rec.TypeCounts[sym]++
	}

	for _, d := range def.Descriptors {
		descr := strings.TrimSpace(d.Descriptor)
		if descr == "" {
			continue
		}
		kind, err := ParseDescriptorKind(d.Kind())
		if err != nil {
			slog.Error("unexpected descriptor build type",
				slog.String("id", id),
				slog.String("build_type", d.Kind()))
			continue
		}
		if rec.Descriptors == nil {
			rec.Descriptors = make(map[DescriptorKind]string)
		}
		rec.Descriptors[kind] = descr
	}

	slog.Debug("extracted descriptor record",
		slog.String("id", id),
		slog.String("formula", rec.Formula),
		slog.Bool("ambiguous", rec.Ambiguous),
		slog.Int("charge", charge))

	return id, rec, nil
}
