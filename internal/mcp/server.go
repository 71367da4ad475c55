package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-chat-backend/internal/gateway"
	apperrors "github.com/lk2023060901/ai-chat-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/logger"
)

// Server exposes the operation catalogue as MCP tools. Tool names are the
// operation names and every handler goes through gateway.Invoke, so a tool
// call observes exactly the state a REST call would.
type Server struct {
	gw     *gateway.Gateway
	server *mcp.Server
	log    *logger.Logger
}

func NewServer(gw *gateway.Gateway, name, version string, log *logger.Logger) *Server {
	s := &Server{
		gw:  gw,
		log: log,
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	for _, spec := range gateway.Catalog() {
		s.register(spec)
	}
	return s
}

// register binds one catalogue entry to a tool. Arguments arrive as a free
// JSON object and are decoded by gateway.Parse, the same way for every tool.
func (s *Server) register(spec gateway.ToolSpec) {
	name := spec.Name
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        name,
		Description: spec.Description,
	}, func(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]interface{}]) (*mcp.CallToolResultFor[any], error) {
		args, err := json.Marshal(params.Arguments)
		if err != nil {
			return errorResult(apperrors.Wrap(err, apperrors.ErrInvalidParams, "malformed arguments")), nil
		}

		result, err := s.gw.Invoke(ctx, name, args)
		if err != nil {
			if s.log != nil {
				s.log.Debug("tool call failed",
					zap.String("tool", name),
					zap.String("kind", string(apperrors.GetKind(apperrors.ExtractCode(err)))),
					zap.Error(err))
			}
			return errorResult(err), nil
		}

		body, err := json.Marshal(result)
		if err != nil {
			return errorResult(apperrors.Wrap(err, apperrors.ErrInternalServer)), nil
		}
		return &mcp.CallToolResultFor[any]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(body)},
			},
		}, nil
	})
}

// errorResult renders a failed call as a tool error with the same message the
// REST surface would return in its envelope.
func errorResult(err error) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: apperrors.UserMessage(err)},
		},
	}
}

// Handler returns an HTTP handler speaking the MCP SSE transport, for
// mounting next to the REST routes.
func (s *Server) Handler() http.Handler {
	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server {
		return s.server
	})
}

// Run serves the tool surface over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, mcp.NewStdioTransport())
}
