package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusResourceURI is the URI of the index status resource.
const StatusResourceURI = "ccindex://status"

func (s *Server) registerResources() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "status",
			URI:         StatusResourceURI,
			Description: "Index cache files, formats, sizes, and loaded entry counts",
			MIMEType:    "application/json",
		},
		s.readStatusResource,
	)
}

func (s *Server) readStatusResource(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	out, err := s.indexStatus(ctx)
	if err != nil {
		return nil, err
	}
	content, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, MapError(err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      StatusResourceURI,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}
