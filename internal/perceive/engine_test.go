package perceive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
)

func benzene() *chemcomp.Definition {
	d := &chemcomp.Definition{
		ID:       "BNZ",
		ChemComp: &chemcomp.ChemComp{ID: "BNZ", Formula: "C6 H6"},
		Descriptors: []chemcomp.Descriptor{
			{Type: "SMILES", Program: "ACDLabs", Descriptor: "c1ccccc1"},
			{Type: "SMILES_CANONICAL", Program: "CACTVS", Descriptor: "c1ccccc1"},
			{Type: "SMILES", Program: "OpenEye OEToolkits", Descriptor: "C1=CC=CC=C1"},
			{Type: "InChIKey", Program: "InChI", Descriptor: "UHOVQNZJYSORNB-UHFFFAOYSA-N"},
		},
	}
	for i := 0; i < 6; i++ {
		d.Atoms = append(d.Atoms, chemcomp.Atom{TypeSymbol: "C"}, chemcomp.Atom{TypeSymbol: "H"})
	}
	return d
}

func TestDescriptorEngine_FullPerception(t *testing.T) {
	// Given: an engine without perception limits
	eng := NewDescriptorEngine().Configure(Options{LimitPerceptions: false})

	// When: perceiving a definition with two distinct SMILES
	res, err := eng.Perceive(benzene())

	// Then: the parent plus one extra form are produced
	require.NoError(t, err)
	assert.Equal(t, "BNZ", res.ID)
	require.Len(t, res.Forms, 2)

	parent := res.Forms["BNZ"]
	require.NotNil(t, parent)
	assert.Equal(t, chemcomp.FormParent, parent.FormType)
	assert.Equal(t, "C1=CC=CC=C1", parent.SMILES)
	assert.Equal(t, "C6H6", parent.Formula)
	assert.Equal(t, map[string]int{"C": 6, "H": 6}, parent.TypeCounts)

	extra := res.Forms["BNZ|acdlabs-smiles"]
	require.NotNil(t, extra)
	assert.Equal(t, "c1ccccc1", extra.SMILES)
	assert.Equal(t, "BNZ", extra.ParentID)
}

func TestDescriptorEngine_LimitPerceptions(t *testing.T) {
	eng := NewDescriptorEngine().Configure(Options{LimitPerceptions: true})

	res, err := eng.Perceive(benzene())
	require.NoError(t, err)
	assert.Len(t, res.Forms, 1)
	assert.Contains(t, res.Forms, "BNZ")
}

func TestDescriptorEngine_ReportsClaimedIdentity(t *testing.T) {
	d := benzene()
	d.ID = "XXX"

	res, err := NewDescriptorEngine().Perceive(d)
	require.NoError(t, err)
	assert.Equal(t, "BNZ", res.ID)
}

func TestDescriptorEngine_Failure(t *testing.T) {
	d := benzene()
	d.ChemComp = nil

	_, err := NewDescriptorEngine().Perceive(d)
	assert.ErrorIs(t, err, ErrPerceptionFailed)
	assert.ErrorIs(t, err, chemcomp.ErrNoIdentity)
}

func TestDescriptorEngine_ConfigureReturnsNewEngine(t *testing.T) {
	base := NewDescriptorEngine()
	configured := base.Configure(Options{LimitPerceptions: true}).(*DescriptorEngine)

	assert.False(t, base.Options().LimitPerceptions)
	assert.True(t, configured.Options().LimitPerceptions)
}
