package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/logging"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/tools"
)

const maxMessageBytes = 10 << 20

// Server identity
const (
	DefaultName         = "Minecraft Documentation Server"
	DefaultInstructions = "Provides access to Minecraft server documentation (Paper, Leaf, Purpur), " +
		"Minecraft Wiki articles, and Mojang API data for player profiles and server status."
)

// ToolProvider lists and runs tools
type ToolProvider interface {
	List() []tools.Tool
	Call(ctx context.Context, name string, args json.RawMessage) (*tools.Result, error)
}

// Options configures a Server
type Options struct {
	Name         string
	Version      string
	Instructions string
	Tools        ToolProvider
	Logger       *zap.Logger
}

// inflight tracks a running request so a cancellation can reach it
type inflight struct {
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// Server answers MCP requests. Requests run concurrently; responses are
// written one line at a time.
type Server struct {
	name         string
	version      string
	instructions string
	tools        ToolProvider
	logger       *zap.Logger

	writeMu sync.Mutex
	w       io.Writer

	mu       sync.Mutex
	inflight map[string]*inflight
	wg       sync.WaitGroup

	initialized atomic.Bool
}

// NewServer creates an MCP server
func NewServer(opts Options) *Server {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	return &Server{
		name:         opts.Name,
		version:      opts.Version,
		instructions: opts.Instructions,
		tools:        opts.Tools,
		logger:       logging.OrNop(opts.Logger),
		inflight:     make(map[string]*inflight),
	}
}

// Serve reads messages from r and writes responses to w until r reaches EOF
// or ctx is cancelled. It returns after in-flight requests finish. EOF is a
// clean shutdown and returns nil.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.w = w

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxMessageBytes)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	s.logger.Info("MCP server listening on stdio", zap.String("name", s.name), zap.String("version", s.version))

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.Info("MCP server stopped", zap.Error(ctx.Err()))
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				s.wg.Wait()
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read message: %w", err)
				}
				s.logger.Info("Input closed, MCP server stopped")
				return nil
			}
			s.handleLine(ctx, line)
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}

	if line[0] == '[' {
		s.writeError(nil, newError(CodeInvalidRequest, "batch requests are not supported"))
		return
	}

	if !json.Valid(line) {
		s.logger.Warn("Failed to parse message")
		s.writeError(nil, newError(CodeParseError, "parse error: invalid JSON"))
		return
	}

	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("Malformed request", zap.Error(err))
		s.writeError(recoverID(line), newError(CodeInvalidRequest, "invalid request: %v", err))
		return
	}

	if req.JSONRPC != jsonrpcVersion {
		s.writeError(req.ID, newError(CodeInvalidRequest, "invalid request: jsonrpc must be %q", jsonrpcVersion))
		return
	}
	if req.Method == "" {
		s.writeError(req.ID, newError(CodeInvalidRequest, "invalid request: missing method"))
		return
	}

	if req.isNotification() {
		s.handleNotification(&req)
		return
	}

	s.start(ctx, &req)
}

// recoverID extracts a usable id from a request that failed to decode.
// Only string and number ids are echoed; anything else becomes null.
func recoverID(line []byte) json.RawMessage {
	var envelope struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil || len(envelope.ID) == 0 {
		return nil
	}
	switch c := envelope.ID[0]; {
	case c == '"', c == '-', c >= '0' && c <= '9':
		return envelope.ID
	}
	return nil
}

// start runs a request in its own goroutine
func (s *Server) start(ctx context.Context, req *request) {
	reqCtx, cancel := context.WithCancel(ctx)
	call := &inflight{cancel: cancel}
	key := string(req.ID)

	s.mu.Lock()
	s.inflight[key] = call
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			if s.inflight[key] == call {
				delete(s.inflight, key)
			}
			s.mu.Unlock()
			cancel()
		}()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Panic while handling request",
					zap.String("method", req.Method),
					zap.Any("panic", r),
					zap.Stack("stack"))
				s.writeError(req.ID, newError(CodeInternalError, "internal error: %v", r))
			}
		}()

		result, rpcErr := s.dispatch(reqCtx, req)

		if call.cancelled.Load() {
			s.logger.Debug("Dropping response to cancelled request", zap.String("id", key))
			return
		}
		if rpcErr != nil {
			s.writeError(req.ID, rpcErr)
			return
		}
		s.write(response{JSONRPC: jsonrpcVersion, ID: req.ID, Result: result})
	}()
}

func (s *Server) handleNotification(req *request) {
	switch req.Method {
	case "notifications/initialized":
		s.initialized.Store(true)
		s.logger.Info("Client initialized")

	case "notifications/cancelled":
		var params cancelledParams
		if err := json.Unmarshal(req.Params, &params); err != nil || len(params.RequestID) == 0 {
			s.logger.Warn("Ignoring malformed cancellation")
			return
		}
		key := string(bytes.TrimSpace(params.RequestID))

		s.mu.Lock()
		call, ok := s.inflight[key]
		s.mu.Unlock()
		if !ok {
			s.logger.Debug("Cancellation for unknown request", zap.String("id", key))
			return
		}
		call.cancelled.Store(true)
		call.cancel()
		s.logger.Info("Request cancelled", zap.String("id", key), zap.String("reason", params.Reason))

	default:
		s.logger.Debug("Ignoring notification", zap.String("method", req.Method))
	}
}

func (s *Server) dispatch(ctx context.Context, req *request) (any, *rpcError) {
	if strings.HasPrefix(req.Method, "tools/") && !s.initialized.Load() {
		s.logger.Debug("Tool request before initialization completed", zap.String("method", req.Method))
	}

	switch req.Method {
	case "initialize":
		return s.initialize(req.Params)
	case "ping":
		return struct{}{}, nil
	case "tools/list":
		return s.listTools(), nil
	case "tools/call":
		return s.callTool(ctx, req.Params)
	default:
		return nil, newError(CodeMethodNotFound, "method not found: %s", req.Method)
	}
}

func (s *Server) initialize(raw json.RawMessage) (any, *rpcError) {
	var params initializeParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, newError(CodeInvalidParams, "invalid params: %v", err)
		}
	}

	version := negotiateVersion(params.ProtocolVersion)
	s.logger.Info("Initializing session",
		zap.String("client", params.ClientInfo.Name),
		zap.String("client_version", params.ClientInfo.Version),
		zap.String("requested_protocol", params.ProtocolVersion),
		zap.String("protocol", version))

	return initializeResult{
		ProtocolVersion: version,
		Capabilities:    serverCapabilities{Tools: toolsCapability{ListChanged: false}},
		ServerInfo:      implementation{Name: s.name, Version: s.version},
		Instructions:    s.instructions,
	}, nil
}

func (s *Server) listTools() listToolsResult {
	list := s.tools.List()
	result := listToolsResult{Tools: make([]toolDescriptor, 0, len(list))}
	for _, t := range list {
		result.Tools = append(result.Tools, toolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return result
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, *rpcError) {
	var params callToolParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, newError(CodeInvalidParams, "invalid params: %v", err)
	}
	if params.Name == "" {
		return nil, newError(CodeInvalidParams, "invalid params: missing tool name")
	}

	s.logger.Info("Calling tool", zap.String("tool", params.Name))

	result, err := s.tools.Call(ctx, params.Name, params.Arguments)
	switch {
	case errors.Is(err, tools.ErrUnknownTool), errors.Is(err, tools.ErrInvalidArguments):
		return nil, newError(CodeInvalidParams, "%v", err)
	case err != nil:
		return nil, newError(CodeInternalError, "tool %s failed: %v", params.Name, err)
	}

	return callToolResult{
		Content: []textContent{{Type: "text", Text: result.Text}},
		IsError: result.IsError,
	}, nil
}

func (s *Server) writeError(id json.RawMessage, rpcErr *rpcError) {
	s.write(response{JSONRPC: jsonrpcVersion, ID: id, Error: rpcErr})
}

func (s *Server) write(resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to marshal response", zap.Error(err))
		data, _ = json.Marshal(response{
			JSONRPC: jsonrpcVersion,
			ID:      resp.ID,
			Error:   newError(CodeInternalError, "internal error: failed to marshal response"),
		})
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}
