package harvest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hazyhaar/glane/kit"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers all harvest tools on an MCP server. The
// factory opens a collection session per scan call.
func (s *Service) RegisterMCP(srv *mcp.Server, factory SourceFactory) {
	s.registerScanProfile(srv, factory)
	s.registerScanTrends(srv, factory)
	s.registerStats(srv)
	s.registerRecentRuns(srv)
	s.registerListCategories(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	sch := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sch["required"] = required
	}
	return sch
}

func (s *Service) registerScanProfile(srv *mcp.Server, factory SourceFactory) {
	type req struct {
		Handle     string `json:"handle"`
		Posts      int    `json:"posts"`
		Exhaustive bool   `json:"exhaustive"`
		DryRun     bool   `json:"dry_run"`
	}

	tool := &mcp.Tool{
		Name:        "glane_scan_profile",
		Description: "Scan a profile for new posts, newest first",
		InputSchema: inputSchema(map[string]any{
			"handle":     map[string]any{"type": "string", "description": "Profile handle"},
			"posts":      map[string]any{"type": "integer", "description": "Target count of new posts"},
			"exhaustive": map[string]any{"type": "boolean", "description": "Page until the source is exhausted"},
			"dry_run":    map[string]any{"type": "boolean", "description": "Skip dedup reads and writes"},
		}, []string{"handle"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return s.ScanHandle(ctx, factory, p.Handle, ProfileOptions{
			Posts:      p.Posts,
			Exhaustive: p.Exhaustive,
			DryRun:     p.DryRun,
		})
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (s *Service) registerScanTrends(srv *mcp.Server, factory SourceFactory) {
	type req struct {
		Category string  `json:"category"`
		MaxItems int     `json:"max_items"`
		MaxHours float64 `json:"max_hours"`
		Target   int     `json:"target_new_count"`
		DryRun   bool    `json:"dry_run"`
	}

	tool := &mcp.Tool{
		Name:        "glane_scan_trends",
		Description: "Scan a category's hashtag feeds for recent high-engagement items",
		InputSchema: inputSchema(map[string]any{
			"category":         map[string]any{"type": "string", "description": "Business category (e.g. restaurant, gym)"},
			"max_items":        map[string]any{"type": "integer", "description": "Result cap"},
			"max_hours":        map[string]any{"type": "number", "description": "Recency window in hours"},
			"target_new_count": map[string]any{"type": "integer", "description": "Discovery target; 0 pages exhaustively"},
			"dry_run":          map[string]any{"type": "boolean", "description": "Skip dedup reads and writes"},
		}, []string{"category"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return s.ScanCategory(ctx, factory, p.Category, TrendsOptions{
			MaxItems:       p.MaxItems,
			MaxAge:         time.Duration(p.MaxHours * float64(time.Hour)),
			TargetNewCount: p.Target,
			DryRun:         p.DryRun,
		})
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (s *Service) registerStats(srv *mcp.Server) {
	type req struct{}

	tool := &mcp.Tool{
		Name:        "glane_stats",
		Description: "Get seen-item counts per tracked entity",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return s.Stats(ctx)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: &req{}}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (s *Service) registerRecentRuns(srv *mcp.Server) {
	type req struct {
		Entity string `json:"entity"`
		Limit  int    `json:"limit"`
	}

	tool := &mcp.Tool{
		Name:        "glane_recent_runs",
		Description: "List recent harvest runs, newest first",
		InputSchema: inputSchema(map[string]any{
			"entity": map[string]any{"type": "string", "description": "Filter by entity; empty matches all"},
			"limit":  map[string]any{"type": "integer", "description": "Max entries"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return s.RecentRuns(ctx, p.Entity, p.Limit)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (s *Service) registerListCategories(srv *mcp.Server) {
	type req struct{}

	tool := &mcp.Tool{
		Name:        "glane_list_categories",
		Description: "List known category presets and their hashtags",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		merged := make(map[string][]string, len(CategoryHashtags)+len(s.config.Categories))
		for k, v := range CategoryHashtags {
			merged[k] = v
		}
		for k, v := range s.config.Categories {
			merged[k] = v
		}
		return merged, nil
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: &req{}}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
