// Package host serves the skill disclosure tools over the Model Context
// Protocol. The tools themselves are transport independent; this package
// only adapts them to an mcp-go server and its stdio and SSE transports.
package host

import (
	"context"
	"encoding/json"
	"io"
	stdlog "log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jingkaihe/skillz/pkg/disclosure"
	"github.com/jingkaihe/skillz/pkg/logger"
	"github.com/jingkaihe/skillz/pkg/metadata"
	"github.com/jingkaihe/skillz/pkg/skills"
	"github.com/jingkaihe/skillz/pkg/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MetadataResourceURI is the MCP resource holding the markdown skill digest
const MetadataResourceURI = "skills://metadata"

// Server is an MCP server exposing load_skill, read_skill_file and
// list_skill_files plus the metadata resource.
type Server struct {
	mcp     *server.MCPServer
	tools   []tools.Tool
	summary *metadata.Generator
	log     *logrus.Entry
}

// New creates a Server for the skills reachable through svc
func New(name, version string, svc *disclosure.Service, log *logrus.Entry) (*Server, error) {
	summary := metadata.NewGenerator(svc.Registry())

	s := &Server{
		tools:   tools.NewToolset(svc),
		summary: summary,
		log:     log,
	}

	s.mcp = server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(summary.SummaryText()),
		server.WithRecovery(),
	)

	for _, tool := range s.tools {
		schema, err := json.Marshal(tool.GenerateSchema())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal schema for tool %s", tool.Name())
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(tool.Name(), tool.Description(), schema), s.handler(tool))
	}

	s.mcp.AddResource(
		mcp.NewResource(MetadataResourceURI, "Available skills",
			mcp.WithResourceDescription("Summary of every available skill, suitable for a system prompt"),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMetadataResource,
	)

	return s, nil
}

// MCPServer returns the underlying mcp-go server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// handler adapts a tool to an mcp-go tool handler. Tool failures are
// returned as error results, never as protocol errors.
func (s *Server) handler(tool tools.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := s.log.WithFields(logrus.Fields{
			"request_id": uuid.NewString(),
			"tool":       tool.Name(),
		})
		ctx = logger.WithLogger(ctx, log)

		var args any = request.Params.Arguments
		if args == nil {
			args = map[string]any{}
		}
		params, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError(errors.Wrap(err, "invalid arguments").Error()), nil
		}

		result := tools.RunTool(ctx, tool, string(params))
		if result.IsError() {
			log.WithError(result.Err).WithField("kind", skills.KindOf(result.Err).String()).Warn("tool call failed")
			return mcp.NewToolResultError(result.GetError()), nil
		}

		log.Debug("tool call completed")
		return mcp.NewToolResultText(result.Content), nil
	}
}

func (s *Server) readMetadataResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/markdown",
			Text:     s.summary.SummaryText(),
		},
	}, nil
}

// ServeStdio serves MCP over in/out until ctx is cancelled or in is closed
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(stdlog.New(s.log.WriterLevel(logrus.ErrorLevel), "", 0))

	s.log.Info("serving MCP over stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "stdio server failed")
	}
	return nil
}

// ServeSSE serves MCP over HTTP server-sent events on addr until ctx is
// cancelled. The same listener answers /healthz and /metadata.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	var opts []server.SSEOption
	if baseURL != "" {
		opts = append(opts, server.WithBaseURL(baseURL))
	}
	sse := server.NewSSEServer(s.mcp, opts...)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(sse),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := sse.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("failed to shutdown SSE server")
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("failed to shutdown HTTP server")
		}
	}()

	s.log.WithField("addr", addr).Info("serving MCP over SSE")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "SSE server failed")
	}
	return nil
}

// Router returns the HTTP routes served next to the MCP handler
func (s *Server) Router(mcpHandler http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metadata", s.handleMetadata).Methods(http.MethodGet)
	if mcpHandler != nil {
		r.PathPrefix("/").Handler(mcpHandler)
	}
	r.Use(s.loggingMiddleware)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleMetadata renders the skill summary; ?format=json selects the
// structured records, anything else markdown.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	format := metadata.ParseFormat(r.URL.Query().Get("format"))

	content, err := s.summary.Render(format)
	if err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to render metadata")
		http.Error(w, "failed to render metadata", http.StatusInternalServerError)
		return
	}

	if format == metadata.FormatJSON {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	}
	io.WriteString(w, content)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := s.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		})

		next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), log)))

		log.WithField("duration", time.Since(start)).Debug("http request")
	})
}
