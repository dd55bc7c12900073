package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"charm.land/fantasy"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/saorsa-labs/saorsa/internal/builtin"
	"github.com/saorsa-labs/saorsa/internal/config"
)

// ConnectionPoolConfig tunes how long pooled connections are kept around
// and how often they are re-verified before being handed out again.
type ConnectionPoolConfig struct {
	// MaxIdleTime is how long an unused connection is kept before a fresh
	// GetConnectionWithHealthCheck call reconnects it from scratch.
	MaxIdleTime time.Duration
	// HealthCheckInterval is the minimum time between two health checks of
	// the same connection; checks more frequent than this reuse the last
	// result instead of round-tripping to the server again.
	HealthCheckInterval time.Duration
	// InitTimeout bounds the MCP initialize handshake for a new connection.
	InitTimeout time.Duration
}

// DefaultConnectionPoolConfig returns the pool tuning used when a caller
// doesn't need anything unusual.
func DefaultConnectionPoolConfig() ConnectionPoolConfig {
	return ConnectionPoolConfig{
		MaxIdleTime:         10 * time.Minute,
		HealthCheckInterval: 30 * time.Second,
		InitTimeout:         30 * time.Second,
	}
}

// pooledConnection is a single cached MCP client along with enough
// bookkeeping to decide whether it needs a health check or a replacement.
type pooledConnection struct {
	client          client.MCPClient
	serverName      string
	createdAt       time.Time
	lastUsed        time.Time
	lastHealthCheck time.Time
	healthy         bool
}

// MCPConnectionPool caches one live MCP client connection per server name,
// so repeated tool calls against the same server reuse its process/socket
// instead of reconnecting on every invocation. It also tracks per-server
// health so a broken connection is recycled rather than reused forever.
type MCPConnectionPool struct {
	mu          sync.Mutex
	config      ConnectionPoolConfig
	model       fantasy.LanguageModel
	debug       bool
	debugLogger DebugLogger
	conns       map[string]*pooledConnection
}

// NewMCPConnectionPool creates an empty pool. model is threaded through to
// in-process builtin servers, which need it to run their own LLM-backed
// tools (e.g. summarization); debug enables verbose connection logging
// until SetDebugLogger installs a real logger.
func NewMCPConnectionPool(cfg ConnectionPoolConfig, model fantasy.LanguageModel, debug bool) *MCPConnectionPool {
	return &MCPConnectionPool{
		config: cfg,
		model:  model,
		debug:  debug,
		conns:  make(map[string]*pooledConnection),
	}
}

// SetDebugLogger installs the logger used for connection diagnostics.
func (p *MCPConnectionPool) SetDebugLogger(logger DebugLogger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.debugLogger = logger
}

func (p *MCPConnectionPool) logDebug(format string, args ...any) {
	if p.debugLogger == nil || !p.debugLogger.IsDebugEnabled() {
		return
	}
	p.debugLogger.LogDebug(fmt.Sprintf("[DEBUG] "+format, args...))
}

// GetConnection returns the pooled connection for serverName, creating and
// initializing one if none exists yet. It does not re-verify liveness of an
// existing connection; use GetConnectionWithHealthCheck for that.
func (p *MCPConnectionPool) GetConnection(ctx context.Context, serverName string, serverConfig config.MCPServerConfig) (*pooledConnection, error) {
	p.mu.Lock()
	if conn, ok := p.conns[serverName]; ok {
		conn.lastUsed = time.Now()
		p.mu.Unlock()
		return conn, nil
	}
	p.mu.Unlock()

	return p.connect(ctx, serverName, serverConfig)
}

// GetConnectionWithHealthCheck returns a verified-live connection for
// serverName. If the cached connection hasn't been checked within
// HealthCheckInterval, it is pinged with a lightweight ListTools call; a
// failed ping or a missing connection triggers a fresh reconnect.
func (p *MCPConnectionPool) GetConnectionWithHealthCheck(ctx context.Context, serverName string, serverConfig config.MCPServerConfig) (*pooledConnection, error) {
	p.mu.Lock()
	conn, ok := p.conns[serverName]
	needsCheck := ok && time.Since(conn.lastHealthCheck) >= p.config.HealthCheckInterval
	p.mu.Unlock()

	if !ok {
		return p.connect(ctx, serverName, serverConfig)
	}

	if !needsCheck {
		p.mu.Lock()
		conn.lastUsed = time.Now()
		p.mu.Unlock()
		return conn, nil
	}

	if _, err := conn.client.ListTools(ctx, mcp.ListToolsRequest{}); err != nil {
		p.logDebug("health check failed for %s, reconnecting: %v", serverName, err)
		p.HandleConnectionError(serverName, err)
		return p.connect(ctx, serverName, serverConfig)
	}

	p.mu.Lock()
	conn.healthy = true
	conn.lastHealthCheck = time.Now()
	conn.lastUsed = time.Now()
	p.mu.Unlock()
	return conn, nil
}

// HandleConnectionError marks the pooled connection for serverName as
// unhealthy and evicts it, so the next GetConnection call reconnects from
// scratch instead of reusing a connection that just failed.
func (p *MCPConnectionPool) HandleConnectionError(serverName string, err error) {
	p.logDebug("connection error for %s: %v", serverName, err)

	p.mu.Lock()
	conn, ok := p.conns[serverName]
	delete(p.conns, serverName)
	p.mu.Unlock()

	if ok {
		_ = conn.client.Close()
	}
}

// GetClients returns the MCP client for every currently pooled connection,
// keyed by server name. Used for reporting which servers are loaded.
func (p *MCPConnectionPool) GetClients() map[string]client.MCPClient {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]client.MCPClient, len(p.conns))
	for name, conn := range p.conns {
		out[name] = conn.client
	}
	return out
}

// Close closes every pooled connection. Safe to call multiple times.
func (p *MCPConnectionPool) Close() error {
	p.mu.Lock()
	conns := p.conns
	p.conns = make(map[string]*pooledConnection)
	p.mu.Unlock()

	var errs []string
	for name, conn := range conns {
		if err := conn.client.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close connections: %s", strings.Join(errs, "; "))
	}
	return nil
}

// connect builds, starts and initializes a new MCP client for serverName,
// stores it in the pool and returns it.
func (p *MCPConnectionPool) connect(ctx context.Context, serverName string, serverConfig config.MCPServerConfig) (*pooledConnection, error) {
	mcpClient, err := p.createClient(ctx, serverName, serverConfig)
	if err != nil {
		return nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, p.config.InitTimeout)
	defer cancel()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "saorsa",
		Version: "1.0.0",
	}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	if _, err := mcpClient.Initialize(initCtx, initRequest); err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("initialization timeout or failed: %v", err)
	}

	now := time.Now()
	conn := &pooledConnection{
		client:          mcpClient,
		serverName:      serverName,
		createdAt:       now,
		lastUsed:        now,
		lastHealthCheck: now,
		healthy:         true,
	}

	p.mu.Lock()
	p.conns[serverName] = conn
	p.mu.Unlock()

	return conn, nil
}

// createClient builds the transport-appropriate MCP client for a server
// configuration, without starting or initializing it.
func (p *MCPConnectionPool) createClient(ctx context.Context, serverName string, serverConfig config.MCPServerConfig) (client.MCPClient, error) {
	transportType := serverConfig.GetTransportType()

	switch transportType {
	case "stdio":
		var env []string
		var command string
		var args []string

		if len(serverConfig.Command) > 0 {
			command = serverConfig.Command[0]
			if len(serverConfig.Command) > 1 {
				args = serverConfig.Command[1:]
			} else if len(serverConfig.Args) > 0 {
				args = serverConfig.Args
			}
		}

		for k, v := range serverConfig.Environment {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		for k, v := range serverConfig.Env {
			env = append(env, fmt.Sprintf("%s=%v", k, v))
		}

		stdioTransport := transport.NewStdio(command, env, args...)
		stdioClient := client.NewClient(stdioTransport)

		if err := stdioTransport.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start stdio transport: %v", err)
		}
		time.Sleep(100 * time.Millisecond)
		return stdioClient, nil

	case "sse":
		var options []transport.ClientOption
		if headers := parseHeaders(serverConfig.Headers); len(headers) > 0 {
			options = append(options, transport.WithHeaders(headers))
		}

		sseClient, err := client.NewSSEMCPClient(serverConfig.URL, options...)
		if err != nil {
			return nil, err
		}
		if err := sseClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start SSE client: %v", err)
		}
		return sseClient, nil

	case "streamable":
		var options []transport.StreamableHTTPCOption
		if headers := parseHeaders(serverConfig.Headers); len(headers) > 0 {
			options = append(options, transport.WithHTTPHeaders(headers))
		}

		streamableClient, err := client.NewStreamableHttpClient(serverConfig.URL, options...)
		if err != nil {
			return nil, err
		}
		if err := streamableClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start streamable HTTP client: %v", err)
		}
		return streamableClient, nil

	case "inprocess":
		registry := builtin.NewRegistry()
		builtinServer, err := registry.CreateServer(serverConfig.Name, serverConfig.Options, p.model)
		if err != nil {
			return nil, fmt.Errorf("failed to create builtin server: %v", err)
		}
		inProcessClient, err := client.NewInProcessClient(builtinServer.GetServer())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-process client: %v", err)
		}
		return inProcessClient, nil

	default:
		return nil, fmt.Errorf("unsupported transport type '%s' for server %s", transportType, serverName)
	}
}

func parseHeaders(raw []string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	headers := make(map[string]string)
	for _, header := range raw {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
