// Package perceive defines the perception engine capability used to derive
// related molecular forms from a raw definition.
package perceive

import (
	"errors"
	"fmt"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
)

// ErrPerceptionFailed wraps any failure to perceive a definition.
var ErrPerceptionFailed = errors.New("perception failed")

// Options are directives passed through to the engine.
type Options struct {
	// LimitPerceptions skips expensive perception sub-steps.
	LimitPerceptions bool
	// Quiet suppresses per-definition engine logging.
	Quiet bool
}

// Result is the outcome of perceiving one definition.
type Result struct {
	// ID is the identity the engine read from the definition.
	ID string
	// Forms maps RelatedForm.Name to the form.
	Forms map[string]*chemcomp.RelatedForm
}

// Engine perceives related forms. Implementations are stateless after
// Configure and safe for concurrent use by multiple workers.
type Engine interface {
	Configure(opts Options) Engine
	Perceive(def *chemcomp.Definition) (*Result, error)
}

// DescriptorEngine derives forms from the descriptors already present in a
// definition. It yields a parent form named by the component id and, unless
// LimitPerceptions is set, one form per additional distinct SMILES string.
type DescriptorEngine struct {
	opts Options
}

// NewDescriptorEngine returns an unconfigured engine.
func NewDescriptorEngine() *DescriptorEngine {
	return &DescriptorEngine{}
}

// Configure implements Engine.
func (e *DescriptorEngine) Configure(opts Options) Engine {
	return &DescriptorEngine{opts: opts}
}

// Options returns the active options.
func (e *DescriptorEngine) Options() Options {
	return e.opts
}

// Perceive implements Engine.
func (e *DescriptorEngine) Perceive(def *chemcomp.Definition) (*Result, error) {
	id, rec, err := chemcomp.Extract(def)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPerceptionFailed, err)
	}

	parent := &chemcomp.RelatedForm{
		Name:       id,
		ParentID:   id,
		FormType:   chemcomp.FormParent,
		Formula:    rec.Formula,
		TypeCounts: rec.TypeCounts,
	}
	res := &Result{
		ID:    id,
		Forms: map[string]*chemcomp.RelatedForm{id: parent},
	}

	seen := make(map[string]bool)
	for _, kind := range chemcomp.AllDescriptorKinds {
		smiles, ok := rec.Descriptors[kind]
		if !ok || !kind.IsSMILES() {
			continue
		}
		if parent.SMILES == "" {
			parent.SMILES = smiles
			seen[smiles] = true
			continue
		}
		if e.opts.LimitPerceptions || seen[smiles] {
			continue
		}
		seen[smiles] = true

		name := id + "|" + string(kind)
		res.Forms[name] = &chemcomp.RelatedForm{
			Name:       name,
			ParentID:   id,
			FormType:   chemcomp.FormDescriptor,
			Formula:    rec.Formula,
			TypeCounts: rec.TypeCounts,
			SMILES:     smiles,
		}
	}

	return res, nil
}
