package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
	"github.com/Aman-CERP/ccindex/internal/perceive"
	"github.com/Aman-CERP/ccindex/internal/ui"
)

// component builds a minimal definition whose atoms follow counts.
func component(id string, counts map[string]int) *chemcomp.Definition {
	d := &chemcomp.Definition{
		ID:       id,
		ChemComp: &chemcomp.ChemComp{ID: id, Name: id},
	}
	formula := ""
	for _, el := range []string{"C", "H", "N", "O", "S"} {
		n := counts[el]
		if n == 0 {
			continue
		}
		formula += fmt.Sprintf("%s%d", el, n)
		for i := 0; i < n; i++ {
			d.Atoms = append(d.Atoms, chemcomp.Atom{
				AtomID:     fmt.Sprintf("%s%d", el, i+1),
				TypeSymbol: el,
			})
		}
	}
	d.ChemComp.Formula = formula
	return d
}

// numbered returns n components with ids C000..C<n-1>, inserted in
// reverse order so insertion order differs from sorted order.
func numbered(n int) *chemcomp.DefinitionSet {
	set := chemcomp.NewDefinitionSet()
	for i := n - 1; i >= 0; i-- {
		id := fmt.Sprintf("C%03d", i)
		set.Add(id, component(id, map[string]int{"C": i + 1, "H": 2}))
	}
	return set
}

// fakeEngine is a deterministic engine with a pluggable perceive func.
type fakeEngine struct {
	mu         sync.Mutex
	configured []perceive.Options
	perceive   func(def *chemcomp.Definition) (*perceive.Result, error)
}

func (f *fakeEngine) Configure(opts perceive.Options) perceive.Engine {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configured = append(f.configured, opts)
	return f
}

func (f *fakeEngine) Perceive(def *chemcomp.Definition) (*perceive.Result, error) {
	if f.perceive != nil {
		return f.perceive(def)
	}
	return twoForms(def)
}

// twoForms yields "<id>" and "<id>-t" for every definition.
func twoForms(def *chemcomp.Definition) (*perceive.Result, error) {
	id := def.ChemComp.ID
	return &perceive.Result{
		ID: id,
		Forms: map[string]*chemcomp.RelatedForm{
			id:        {Name: id, ParentID: id, FormType: chemcomp.FormParent},
			id + "-t": {Name: id + "-t", ParentID: id, FormType: chemcomp.FormTautomer},
		},
	}, nil
}

// recordingRenderer captures renderer calls.
type recordingRenderer struct {
	mu        sync.Mutex
	events    []ui.ProgressEvent
	errors    []ui.ErrorEvent
	completed *ui.CompletionStats
}

func (r *recordingRenderer) Start(context.Context) error { return nil }

func (r *recordingRenderer) UpdateProgress(e ui.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingRenderer) AddError(e ui.ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, e)
}

func (r *recordingRenderer) Complete(stats ui.CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = &stats
}

func (r *recordingRenderer) Stop() error { return nil }
