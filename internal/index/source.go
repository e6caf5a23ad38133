package index

import (
	"context"

	"github.com/Aman-CERP/ccindex/internal/defstore"
	"github.com/Aman-CERP/ccindex/internal/perceive"
	"github.com/Aman-CERP/ccindex/internal/ui"
)

// DefinitionSource constructs the raw definition store on demand. It is only
// called when an index must be rebuilt. molLimit is forwarded from Options.
type DefinitionSource func(ctx context.Context, molLimit int) (defstore.Provider, error)

// SQLiteSource opens the SQLite-cached store under the index cache path,
// always reusing its own cache.
func SQLiteSource(opts Options, sourcePath string) DefinitionSource {
	return func(ctx context.Context, molLimit int) (defstore.Provider, error) {
		o := opts.withDefaults()
		store, err := defstore.Open(ctx, defstore.Options{
			CachePath:      o.CachePath,
			UseCache:       true,
			MolLimit:       molLimit,
			SourcePath:     sourcePath,
			FileNamePrefix: o.FileNamePrefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// StaticSource serves an already-built provider.
func StaticSource(p defstore.Provider) DefinitionSource {
	return func(context.Context, int) (defstore.Provider, error) {
		return p, nil
	}
}

// Deps are the collaborators of the index providers.
type Deps struct {
	// Source supplies definitions for rebuilds. Nil means rebuilds yield
	// an empty index.
	Source DefinitionSource

	// Engine perceives related forms for the search index. Defaults to
	// perceive.DescriptorEngine.
	Engine perceive.Engine

	// Renderer receives build progress. Defaults to ui.NopRenderer.
	Renderer ui.Renderer
}

func (d Deps) renderer() ui.Renderer {
	if d.Renderer == nil {
		return ui.NopRenderer{}
	}
	return d.Renderer
}

func (d Deps) engine() perceive.Engine {
	if d.Engine == nil {
		return perceive.NewDescriptorEngine()
	}
	return d.Engine
}
