// Package chemcomp holds the chemical-component data model shared by the
// definition store, the perception engine, and both index builders.
package chemcomp

// Definition is one raw chemical-component definition as supplied by the
// definition store. ID is the store key; ChemComp.ID is the identity the
// record itself claims, and the two may disagree for malformed entries.
type Definition struct {
	ID          string       `json:"id"`
	ChemComp    *ChemComp    `json:"chem_comp,omitempty"`
	Atoms       []Atom       `json:"atoms,omitempty"`
	Descriptors []Descriptor `json:"descriptors,omitempty"`
	Bonds       []Bond       `json:"bonds,omitempty"`
}

// ChemComp is the single top-level identity record of a definition
type ChemComp struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Type    string `json:"type,omitempty"`
	Formula string `json:"formula"`

	// Y or YES marks an ambiguous definition
	AmbiguousFlag string `json:"pdbx_ambiguous_flag,omitempty"`

	// Integer, or "." / "?" for unknown
	FormalCharge string `json:"pdbx_formal_charge,omitempty"`
}

// Atom is one atom record
type Atom struct {
	AtomID      string `json:"atom_id"`
	TypeSymbol  string `json:"type_symbol"`
	Charge      string `json:"charge,omitempty"`
	Aromatic    bool   `json:"aromatic,omitempty"`
	Stereo      string `json:"stereo_config,omitempty"`
	LeavingAtom bool   `json:"leaving_atom,omitempty"`
}

// Bond links two atoms by AtomID
type Bond struct {
	AtomID1 string `json:"atom_id_1"`
	AtomID2 string `json:"atom_id_2"`
	Order   string `json:"value_order,omitempty"`
}

// Descriptor is one canonical string descriptor (SMILES, InChI, ...) as
// produced by a named program.
type Descriptor struct {
	Type       string `json:"type"`
	Program    string `json:"program,omitempty"`
	Version    string `json:"program_version,omitempty"`
	BuildType  string `json:"build_type,omitempty"`
	Descriptor string `json:"descriptor"`
}

// DescriptorRecord is the descriptor index entry for one component.
type DescriptorRecord struct {
	Formula     string                    `json:"formula"`
	TypeCounts  map[string]int            `json:"type_counts"`
	Ambiguous   bool                      `json:"ambiguous"`
	Descriptors map[DescriptorKind]string `json:"descriptors,omitempty"`
}

// AtomCount returns the total number of atoms counted in TypeCounts.
func (r *DescriptorRecord) AtomCount() int {
	n := 0
	for _, c := range r.TypeCounts {
		n += c
	}
	return n
}

// Form types reported by perception engines
const (
	FormParent     = "parent"
	FormTautomer   = "tautomer"
	FormProtomer   = "protomer"
	FormDescriptor = "descriptor"
)

// RelatedForm is one search index record. Name is the merge key and is
// distinct from ParentID; one component may yield many forms.
type RelatedForm struct {
	Name       string         `json:"name"`
	ParentID   string         `json:"parent_id"`
	FormType   string         `json:"form_type"`
	Formula    string         `json:"formula,omitempty"`
	TypeCounts map[string]int `json:"type_counts,omitempty"`
	SMILES     string         `json:"smiles,omitempty"`
}

// Range is an inclusive count range
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether min <= n <= max.
func (r Range) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// FormulaQuery maps element symbol to an inclusive count range.
type FormulaQuery map[string]Range
