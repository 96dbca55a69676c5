// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/jdeck/internal/adapters/server/common"
)

// toolPrefix namespaces every registered tool.
const toolPrefix = "jdeck."

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter with read tools and, when writer
// is non-nil, the mutation tools.
func NewHandler(cfg Config, reader common.Reader, writer common.Writer) (*Handler, error) {
	if reader == nil {
		return nil, fmt.Errorf("tracker reader is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerProjectTools(mcpSrv, reader)
	registerBoardTools(mcpSrv, reader)
	registerIssueTools(mcpSrv, reader)
	if writer != nil {
		registerMutationTools(mcpSrv, writer)
	}

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "jdeck"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerProjectTools registers project discovery.
func registerProjectTools(srv *mcpserver.MCPServer, reader common.Reader) {
	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"list_projects",
			mcp.WithDescription("List the projects visible to the configured account."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projects, err := reader.ListProjects(ctx)
			return jsonResult("list_projects", "projects", projects, err)
		},
	)
}

// registerBoardTools registers board, sprint, and epic reads.
func registerBoardTools(srv *mcpserver.MCPServer, reader common.Reader) {
	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"list_boards",
			mcp.WithDescription("List the agile boards visible to the configured account."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boards, err := reader.ListBoards(ctx)
			return jsonResult("list_boards", "boards", boards, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"get_board",
			mcp.WithDescription("Return one board by id."),
			mcp.WithNumber("board_id", mcp.Required(), mcp.Description("Board id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireInt("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			board, err := reader.GetBoard(ctx, boardID)
			return jsonResult("get_board", "", board, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"list_board_sprints",
			mcp.WithDescription("List every sprint of a board."),
			mcp.WithNumber("board_id", mcp.Required(), mcp.Description("Board id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireInt("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sprints, err := reader.ListBoardSprints(ctx, boardID)
			return jsonResult("list_board_sprints", "sprints", sprints, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"get_sprint",
			mcp.WithDescription("Return one sprint by id."),
			mcp.WithNumber("sprint_id", mcp.Required(), mcp.Description("Sprint id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			sprintID, err := req.RequireInt("sprint_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sprint, err := reader.GetSprint(ctx, sprintID)
			return jsonResult("get_sprint", "", sprint, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"list_sprint_issues",
			mcp.WithDescription("List the issues of one sprint on a board, newest key first."),
			mcp.WithNumber("board_id", mcp.Required(), mcp.Description("Board id")),
			mcp.WithNumber("sprint_id", mcp.Required(), mcp.Description("Sprint id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireInt("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sprintID, err := req.RequireInt("sprint_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			issues, err := reader.ListSprintIssues(ctx, boardID, sprintID)
			return jsonResult("list_sprint_issues", "issues", issues, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"list_backlog",
			mcp.WithDescription("List the backlog of a board, newest key first."),
			mcp.WithNumber("board_id", mcp.Required(), mcp.Description("Board id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireInt("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			issues, err := reader.ListBacklog(ctx, boardID)
			return jsonResult("list_backlog", "issues", issues, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"list_board_epics",
			mcp.WithDescription("List the epics of a board."),
			mcp.WithNumber("board_id", mcp.Required(), mcp.Description("Board id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireInt("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			epics, err := reader.ListBoardEpics(ctx, boardID)
			return jsonResult("list_board_epics", "epics", epics, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"list_epic_issues",
			mcp.WithDescription("List the issues of an epic."),
			mcp.WithNumber("epic_id", mcp.Required(), mcp.Description("Epic id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			epicID, err := req.RequireInt("epic_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			issues, err := reader.ListEpicIssues(ctx, epicID)
			return jsonResult("list_epic_issues", "issues", issues, err)
		},
	)
}

// registerIssueTools registers issue reads.
func registerIssueTools(srv *mcpserver.MCPServer, reader common.Reader) {
	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"get_issue",
			mcp.WithDescription("Return one issue with its comments."),
			mcp.WithString("key", mcp.Required(), mcp.Description("Issue key, for example ALPHA-12")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			key, err := req.RequireString("key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			issue, err := reader.GetIssue(ctx, key)
			return jsonResult("get_issue", "", issue, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"list_transitions",
			mcp.WithDescription("List the workflow transitions currently available to an issue."),
			mcp.WithString("key", mcp.Required(), mcp.Description("Issue key")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			key, err := req.RequireString("key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			transitions, err := reader.ListTransitions(ctx, key)
			return jsonResult("list_transitions", "transitions", transitions, err)
		},
	)
}

// registerMutationTools registers transition and comment tools.
func registerMutationTools(srv *mcpserver.MCPServer, writer common.Writer) {
	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"transition_issue",
			mcp.WithDescription("Apply one workflow transition to an issue and return its new status."),
			mcp.WithString("key", mcp.Required(), mcp.Description("Issue key")),
			mcp.WithString("transition_id", mcp.Required(), mcp.Description("Transition id from list_transitions")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			key, err := req.RequireString("key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			transitionID, err := req.RequireString("transition_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			out, err := writer.TransitionIssue(ctx, common.TransitionIssueRequest{Key: key, TransitionID: transitionID})
			return jsonResult("transition_issue", "", out, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			toolPrefix+"add_comment",
			mcp.WithDescription("Post a plain-text comment on an issue."),
			mcp.WithString("key", mcp.Required(), mcp.Description("Issue key")),
			mcp.WithString("body", mcp.Required(), mcp.Description("Comment text; one paragraph per line")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			key, err := req.RequireString("key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			body, err := req.RequireString("body")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			comment, err := writer.AddComment(ctx, common.AddCommentRequest{Key: key, Body: body})
			return jsonResult("add_comment", "", comment, err)
		},
	)
}

// jsonResult encodes payload as a tool result. A non-empty field wraps the
// payload in an object so list results still carry structured content.
func jsonResult(tool, field string, payload any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return toolResultFromError(err), nil
	}
	if field != "" {
		payload = map[string]any{field: payload}
	}
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrUpstream):
		return mcp.NewToolResultError("upstream_error: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
