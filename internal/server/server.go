package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/ironsheep/pixel-slider-mcp/internal/config"
	"github.com/ironsheep/pixel-slider-mcp/internal/imaging"
)

// Version is reported in the initialize handshake. cmd/pixel-mcp sets it
// from its ldflags.
var Version = "dev"

// Notification methods pushed while an engine session runs.
const (
	MethodLevelReady  = "notifications/pixel/level_ready"
	MethodLevelFailed = "notifications/pixel/level_failed"
)

// Server handles MCP protocol communication
type Server struct {
	cfg   config.Config
	cache *imaging.ImageCache

	// ctx parents every engine session; it is cancelled when Serve returns.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex // guards session and sessions
	session  *session
	sessions int

	outMu sync.Mutex // serializes responses and notifications
	out   *json.Encoder
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// LevelReadyParams are the params of a level_ready notification.
type LevelReadyParams struct {
	Session   int  `json:"session"`
	Level     int  `json:"level"`
	BlockSize int  `json:"block_size"`
	Selected  bool `json:"selected"`
}

// LevelFailedParams are the params of a level_failed notification.
type LevelFailedParams struct {
	Session   int    `json:"session"`
	Level     int    `json:"level"`
	BlockSize int    `json:"block_size"`
	Error     string `json:"error"`
}

// New creates a new MCP server instance
func New(cfg config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		cache:  imaging.NewImageCache(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses and
// notifications to w until r is exhausted. The active session is cancelled
// and the image cache emptied before Serve returns.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	defer s.cancel()
	defer s.cache.Clear()
	defer s.closeSession()

	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	s.outMu.Lock()
	s.out = json.NewEncoder(w)
	s.outMu.Unlock()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			s.send(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// send writes one message. Messages are dropped when no output is attached.
func (s *Server) send(msg interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.out == nil {
		return
	}
	if err := s.out.Encode(msg); err != nil {
		log.Printf("Failed to encode message: %v", err)
	}
}

// notify pushes a JSON-RPC notification to the client.
func (s *Server) notify(method string, params interface{}) {
	s.send(&MCPNotification{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "pixel-slider-mcp",
				"version": Version,
			},
		},
	}
}

