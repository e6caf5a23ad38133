package chemcomp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glucose() *Definition {
	return &Definition{
		ID: "GLC",
		ChemComp: &ChemComp{
			ID:            "GLC",
			Formula:       "C6 H12 O6",
			AmbiguousFlag: "N",
			FormalCharge:  "0",
		},
		Atoms: []Atom{
			{AtomID: "C1", TypeSymbol: "C"}, {AtomID: "C2", TypeSymbol: "C"},
			{AtomID: "C3", TypeSymbol: "C"}, {AtomID: "C4", TypeSymbol: "C"},
			{AtomID: "C5", TypeSymbol: "C"}, {AtomID: "C6", TypeSymbol: "c"},
			{AtomID: "O1", TypeSymbol: "O"}, {AtomID: "O2", TypeSymbol: "O"},
			{AtomID: "O3", TypeSymbol: "O"}, {AtomID: "O4", TypeSymbol: "O"},
			{AtomID: "O5", TypeSymbol: "O"}, {AtomID: "O6", TypeSymbol: "O"},
			{AtomID: "H1", TypeSymbol: "H"}, {AtomID: "H2", TypeSymbol: "H"},
			{AtomID: "H3", TypeSymbol: "H"}, {AtomID: "H4", TypeSymbol: "H"},
			{AtomID: "H5", TypeSymbol: "H"}, {AtomID: "H6", TypeSymbol: "H"},
			{AtomID: "H7", TypeSymbol: "H"}, {AtomID: "H8", TypeSymbol: "H"},
			{AtomID: "H9", TypeSymbol: "H"}, {AtomID: "H10", TypeSymbol: "H"},
			{AtomID: "H11", TypeSymbol: "H"}, {AtomID: "H12", TypeSymbol: "H"},
		},
		Descriptors: []Descriptor{
			{Type: "SMILES", Program: "ACDLabs", Descriptor: "OCC1OC(O)C(O)C(O)C1O"},
			{Type: "SMILES_CANONICAL", Program: "CACTVS", Descriptor: "OC[C@H]1O[C@H](O)[C@H](O)[C@@H](O)[C@@H]1O"},
			{Type: "InChIKey", Program: "InChI", Descriptor: "WQZGKKKJIJFFOK-DVKNGEFBSA-N"},
			{Type: "SMILES", Program: "Marvin", Descriptor: "OCC1OC(O)C(O)C(O)C1O"},
		},
	}
}

func TestChargeSuffix(t *testing.T) {
	tests := []struct {
		charge   int
		expected string
	}{
		{0, ""},
		{1, "+"},
		{2, "+2"},
		{4, "+4"},
		{-1, "-"},
		{-2, "-2"},
		{-13, "-13"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ChargeSuffix(tt.charge), "charge %d", tt.charge)
	}
}

func TestParseCharge(t *testing.T) {
	tests := []struct {
		in       string
		expected int
		wantErr  bool
	}{
		{"", 0, false},
		{".", 0, false},
		{"?", 0, false},
		{" 2 ", 2, false},
		{"-1", -1, false},
		{"x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCharge(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCharge)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestIsAmbiguous(t *testing.T) {
	assert.True(t, IsAmbiguous("Y"))
	assert.True(t, IsAmbiguous("yes"))
	assert.False(t, IsAmbiguous("N"))
	assert.False(t, IsAmbiguous(""))
}

func TestExtract_Glucose(t *testing.T) {
	// Given: a well-formed definition
	def := glucose()

	// When: extracting
	id, rec, err := Extract(def)

	// Then: formula is compacted and counts are per upper-cased element
	require.NoError(t, err)
	assert.Equal(t, "GLC", id)
	assert.Equal(t, "C6H12O6", rec.Formula)
	assert.Equal(t, map[string]int{"C": 6, "H": 12, "O": 6}, rec.TypeCounts)
	assert.Equal(t, len(def.Atoms), rec.AtomCount())
	assert.False(t, rec.Ambiguous)

	// And: only recognized descriptor kinds survive
	assert.Equal(t, map[DescriptorKind]string{
		KindACDLabsSMILES:   "OCC1OC(O)C(O)C(O)C1O",
		KindCACTVSIsoSMILES: "OC[C@H]1O[C@H](O)[C@H](O)[C@@H](O)[C@@H]1O",
		KindInChIKey:        "WQZGKKKJIJFFOK-DVKNGEFBSA-N",
	}, rec.Descriptors)
}

func TestExtract_ChargeAnnotation(t *testing.T) {
	def := glucose()
	def.ChemComp.FormalCharge = "-2"
	def.ChemComp.AmbiguousFlag = "Y"

	_, rec, err := Extract(def)
	require.NoError(t, err)
	assert.Equal(t, "C6H12O6-2", rec.Formula)
	assert.True(t, rec.Ambiguous)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Definition)
		wantErr error
	}{
		{
			name:    "no identity record",
			mutate:  func(d *Definition) { d.ChemComp = nil },
			wantErr: ErrNoIdentity,
		},
		{
			name:    "empty identity",
			mutate:  func(d *Definition) { d.ChemComp.ID = "" },
			wantErr: ErrNoIdentity,
		},
		{
			name:    "bad charge",
			mutate:  func(d *Definition) { d.ChemComp.FormalCharge = "plus" },
			wantErr: ErrInvalidCharge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := glucose()
			tt.mutate(def)

			_, rec, err := Extract(def)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, rec)
		})
	}
}

func TestExtract_EmptyAtomTypeKeepsRecord(t *testing.T) {
	// Given: glucose with one carbon missing its type symbol
	def := glucose()
	def.Atoms[3].TypeSymbol = " "

	// When: extracting
	id, rec, err := Extract(def)

	// Then: the record is kept and the atom is counted under ""
	require.NoError(t, err)
	assert.Equal(t, "GLC", id)
	assert.Equal(t, map[string]int{"": 1, "C": 5, "H": 12, "O": 6}, rec.TypeCounts)
	assert.Equal(t, len(def.Atoms), rec.AtomCount())
}

func TestExtract_TrimsDescriptors(t *testing.T) {
	// Given: descriptors padded with whitespace, one of them blank
	def := glucose()
	def.Descriptors = []Descriptor{
		{Type: "SMILES", Program: "CACTVS", Descriptor: "  C  \n"},
		{Type: "InChI", Program: "InChI", Descriptor: "   "},
		{Type: "InChIKey", Program: "InChI", Descriptor: "\tWQZGKKKJIJFFOK-DVKNGEFBSA-N "},
	}

	// When: extracting
	_, rec, err := Extract(def)

	// Then: values are trimmed and the blank one is dropped
	require.NoError(t, err)
	assert.Equal(t, map[DescriptorKind]string{
		KindCACTVSSMILES: "C",
		KindInChIKey:     "WQZGKKKJIJFFOK-DVKNGEFBSA-N",
	}, rec.Descriptors)
}

func TestExtract_NilDefinition(t *testing.T) {
	_, _, err := Extract(nil)
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestExtract_Idempotent(t *testing.T) {
	_, a, err := Extract(glucose())
	require.NoError(t, err)
	_, b, err := Extract(glucose())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
