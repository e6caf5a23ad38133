package chemcomp

import (
	"fmt"
	"strings"
)

// DescriptorKind identifies a canonical descriptor variant. The set is closed;
// anything outside it is rejected at extraction time.
type DescriptorKind string

const (
	KindOEIsoSMILES     DescriptorKind = "oe-iso-smiles"
	KindOESMILES        DescriptorKind = "oe-smiles"
	KindACDLabsSMILES   DescriptorKind = "acdlabs-smiles"
	KindCACTVSIsoSMILES DescriptorKind = "cactvs-iso-smiles"
	KindCACTVSSMILES    DescriptorKind = "cactvs-smiles"
	KindInChI           DescriptorKind = "inchi"
	KindInChIKey        DescriptorKind = "inchikey"
)

// AllDescriptorKinds lists the recognized kinds in a stable order.
var AllDescriptorKinds = []DescriptorKind{
	KindOEIsoSMILES,
	KindOESMILES,
	KindACDLabsSMILES,
	KindCACTVSIsoSMILES,
	KindCACTVSSMILES,
	KindInChI,
	KindInChIKey,
}

// IsValid reports whether k is a recognized kind.
func (k DescriptorKind) IsValid() bool {
	switch k {
	case KindOEIsoSMILES, KindOESMILES, KindACDLabsSMILES,
		KindCACTVSIsoSMILES, KindCACTVSSMILES, KindInChI, KindInChIKey:
		return true
	}
	return false
}

// IsSMILES reports whether k is one of the SMILES variants.
func (k DescriptorKind) IsSMILES() bool {
	return k.IsValid() && strings.HasSuffix(string(k), "smiles")
}

// String implements fmt.Stringer.
func (k DescriptorKind) String() string {
	return string(k)
}

// ParseDescriptorKind validates s as a descriptor kind.
func ParseDescriptorKind(s string) (DescriptorKind, error) {
	k := DescriptorKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDescriptorKind, s)
	}
	return k, nil
}

// Kind returns the build type of the descriptor: the explicit BuildType when
// set, otherwise one derived from Type and Program. The result is not
// validated; callers use ParseDescriptorKind.
func (d Descriptor) Kind() string {
	if d.BuildType != "" {
		return d.BuildType
	}

	typ := strings.ToUpper(strings.TrimSpace(d.Type))
	switch typ {
	case "INCHI":
		return string(KindInChI)
	case "INCHIKEY":
		return string(KindInChIKey)
	}

	var suffix string
	switch typ {
	case "SMILES_CANONICAL":
		suffix = "iso-smiles"
	case "SMILES":
		suffix = "smiles"
	default:
		suffix = strings.ToLower(typ)
	}

	prog := strings.ToUpper(d.Program)
	switch {
	case strings.HasPrefix(prog, "OPENEYE"):
		return "oe-" + suffix
	case strings.HasPrefix(prog, "ACDLABS"):
		return "acdlabs-" + suffix
	case strings.HasPrefix(prog, "CACTVS"):
		return "cactvs-" + suffix
	default:
		return strings.ToLower(strings.Fields(d.Program + " unknown")[0]) + "-" + suffix
	}
}
