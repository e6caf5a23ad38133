package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
	"github.com/Aman-CERP/ccindex/internal/formula"
	"github.com/Aman-CERP/ccindex/internal/index"
	"github.com/Aman-CERP/ccindex/pkg/version"
)

const serverName = "ccindex"

// Server answers component, related-form, and formula queries over MCP.
// Indexes are loaded through the registry on first use.
type Server struct {
	mcp      *mcp.Server
	registry *index.Registry
	opts     index.Options
	deps     index.Deps
	logger   *slog.Logger

	mu     sync.RWMutex
	loaded map[string]int // index name -> entries, once loaded
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var toolInfos = []ToolInfo{
	{
		Name:        "get_component",
		Description: "Look up a chemical component by id. Returns its molecular formula, per-element atom counts, and canonical descriptors (SMILES, InChI, InChIKey).",
	},
	{
		Name:        "get_search_entry",
		Description: "Look up a related form (parent, tautomer, protomer) by name in the search index. Returns the parent component id and form details.",
	},
	{
		Name:        "match_formula",
		Description: "Find component ids whose atom counts match a molecular formula or per-element ranges such as C=5:7. Results are sorted.",
	},
	{
		Name:        "index_status",
		Description: "Report the cache location and the descriptor, search, and definition files with their sizes and loaded entry counts.",
	},
}

// NewServer creates an MCP server over the indexes described by opts.
// registry may be shared with other callers; nil creates a private one.
func NewServer(registry *index.Registry, opts index.Options, deps index.Deps) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = index.NewRegistry()
	}

	s := &Server{
		registry: registry,
		opts:     opts,
		deps:     deps,
		logger:   slog.Default(),
		loaded:   make(map[string]int),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return serverName, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	out := make([]ToolInfo, len(toolInfos))
	copy(out, toolInfos)
	return out
}

// CallTool invokes a tool by name with loosely typed arguments, as decoded
// from JSON. It is used by tests; MCP clients reach the same handlers
// through the SDK.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "get_component":
		id, _ := args["id"].(string)
		return s.getComponent(ctx, GetComponentInput{ID: id})
	case "get_search_entry":
		n, _ := args["name"].(string)
		return s.getSearchEntry(ctx, GetSearchEntryInput{Name: n})
	case "match_formula":
		in := MatchFormulaInput{}
		in.Formula, _ = args["formula"].(string)
		in.Elements = stringSlice(args["elements"])
		if l, ok := args["limit"].(float64); ok {
			in.Limit = int(l)
		}
		return s.matchFormula(ctx, in)
	case "index_status":
		return s.indexStatus(ctx)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{Name: toolInfos[0].Name, Description: toolInfos[0].Description}, s.mcpGetComponentHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: toolInfos[1].Name, Description: toolInfos[1].Description}, s.mcpGetSearchEntryHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: toolInfos[2].Name, Description: toolInfos[2].Description}, s.mcpMatchFormulaHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: toolInfos[3].Name, Description: toolInfos[3].Description}, s.mcpIndexStatusHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", len(toolInfos)))
}

func (s *Server) mcpGetComponentHandler(ctx context.Context, _ *mcp.CallToolRequest, input GetComponentInput) (
	*mcp.CallToolResult,
	*ComponentOutput,
	error,
) {
	out, err := s.getComponent(ctx, input)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) mcpGetSearchEntryHandler(ctx context.Context, _ *mcp.CallToolRequest, input GetSearchEntryInput) (
	*mcp.CallToolResult,
	*SearchEntryOutput,
	error,
) {
	out, err := s.getSearchEntry(ctx, input)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) mcpMatchFormulaHandler(ctx context.Context, _ *mcp.CallToolRequest, input MatchFormulaInput) (
	*mcp.CallToolResult,
	*MatchFormulaOutput,
	error,
) {
	out, err := s.matchFormula(ctx, input)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) mcpIndexStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ IndexStatusInput) (
	*mcp.CallToolResult,
	*IndexStatusOutput,
	error,
) {
	out, err := s.indexStatus(ctx)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) getComponent(ctx context.Context, input GetComponentInput) (*ComponentOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, NewInvalidParamsError("id parameter is required")
	}

	requestID := generateRequestID()
	start := time.Now()

	d, err := s.descriptorIndex(ctx)
	if err != nil {
		return nil, MapError(err)
	}
	rec, ok := d.Mol(id)
	if !ok {
		s.logger.Debug("get_component miss",
			slog.String("request_id", requestID),
			slog.String("id", id))
		return nil, NewEntryNotFoundError("component", id)
	}

	out := &ComponentOutput{
		ID:         id,
		Formula:    rec.Formula,
		TypeCounts: rec.TypeCounts,
		AtomCount:  rec.AtomCount(),
		Ambiguous:  rec.Ambiguous,
	}
	if len(rec.Descriptors) > 0 {
		out.Descriptors = make(map[string]string, len(rec.Descriptors))
		for k, v := range rec.Descriptors {
			out.Descriptors[string(k)] = v
		}
	}

	s.logger.Info("get_component completed",
		slog.String("request_id", requestID),
		slog.String("id", id),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

func (s *Server) getSearchEntry(ctx context.Context, input GetSearchEntryInput) (*SearchEntryOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, NewInvalidParamsError("name parameter is required")
	}

	si, err := s.searchIndex(ctx)
	if err != nil {
		return nil, MapError(err)
	}
	form, ok := si.Entry(name)
	if !ok {
		return nil, NewEntryNotFoundError("form", name)
	}

	s.logger.Info("get_search_entry completed",
		slog.String("name", name),
		slog.String("parent_id", form.ParentID))
	return &SearchEntryOutput{Form: form}, nil
}

func (s *Server) matchFormula(ctx context.Context, input MatchFormulaInput) (*MatchFormulaOutput, error) {
	q, err := buildQuery(input)
	if err != nil {
		return nil, err
	}

	requestID := generateRequestID()
	start := time.Now()

	d, err := s.descriptorIndex(ctx)
	if err != nil {
		return nil, MapError(err)
	}
	ids := d.MatchMolecularFormula(q)

	limit := input.Limit
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	out := &MatchFormulaOutput{IDs: ids, Total: len(ids)}
	if len(ids) > limit {
		out.IDs = ids[:limit]
		out.Truncated = true
	}

	s.logger.Info("match_formula completed",
		slog.String("request_id", requestID),
		slog.String("query", formula.QueryKey(q)),
		slog.Int("result_count", out.Total),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

func (s *Server) indexStatus(ctx context.Context) (*IndexStatusOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, MapError(err)
	}

	s.mu.RLock()
	entries := make(map[string]int, len(s.loaded))
	loaded := make([]string, 0, len(s.loaded))
	for name, n := range s.loaded {
		entries[name] = n
		loaded = append(loaded, name)
	}
	s.mu.RUnlock()
	sort.Strings(loaded)

	info := index.Status(s.opts, entries)
	out := &IndexStatusOutput{
		CachePath: info.CachePath,
		Prefix:    info.Prefix,
		Files:     make([]FileStatus, 0, len(info.Files)),
		Loaded:    loaded,
	}
	for _, f := range info.Files {
		fs := FileStatus{
			Name:    f.Name,
			Path:    f.Path,
			Format:  f.Format,
			Exists:  f.Exists,
			Entries: f.Entries,
			Size:    f.Size,
		}
		if !f.ModTime.IsZero() {
			fs.ModTime = f.ModTime.UTC().Format(time.RFC3339)
		}
		out.Files = append(out.Files, fs)
	}
	return out, nil
}

// buildQuery merges an exact formula with per-element ranges.
func buildQuery(input MatchFormulaInput) (chemcomp.FormulaQuery, error) {
	if strings.TrimSpace(input.Formula) == "" && len(input.Elements) == 0 {
		return nil, NewInvalidParamsError("formula or elements parameter is required")
	}

	q := make(chemcomp.FormulaQuery)
	if strings.TrimSpace(input.Formula) != "" {
		fq, err := formula.ParseFormula(input.Formula)
		if err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}
		for el, r := range fq {
			q[el] = r
		}
	}
	if len(input.Elements) > 0 {
		rq, err := formula.ParseRanges(input.Elements)
		if err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}
		for el, r := range rq {
			q[el] = r
		}
	}
	if len(q) == 0 {
		return nil, NewInvalidParamsError("query names no elements")
	}
	return q, nil
}

func (s *Server) descriptorIndex(ctx context.Context) (*index.DescriptorIndex, error) {
	d, err := s.registry.Descriptor(ctx, s.opts, s.deps)
	if err != nil {
		return nil, err
	}
	s.markLoaded(index.StatusDescriptor, d.Len())
	return d, nil
}

func (s *Server) searchIndex(ctx context.Context) (*index.SearchIndex, error) {
	si, err := s.registry.Search(ctx, s.opts, s.deps)
	if err != nil {
		return nil, err
	}
	s.markLoaded(index.StatusSearch, si.Len())
	return si, nil
}

func (s *Server) markLoaded(name string, n int) {
	s.mu.Lock()
	s.loaded[name] = n
	s.mu.Unlock()
}

// Serve runs the server on the named transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server",
		slog.String("transport", transport),
		slog.String("cache_path", s.opts.CachePath))

	switch transport {
	case "", "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

func stringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
