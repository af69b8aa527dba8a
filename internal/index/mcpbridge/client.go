package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"

	creerrors "cre/internal/errors"
	"cre/internal/index"
	"cre/internal/logging"
	"cre/internal/version"
)

// Tool names the code-index server must expose.
const (
	ToolSearch       = "search"
	ToolTraceImports = "traceImports"
	ToolFindUsages   = "findUsages"
)

// Config identifies the external tool server.
type Config struct {
	// ServerName labels the server in logs and traces
	ServerName string `json:"serverName"`
	// Command launches the server process
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Client implements index.CodeIndex against an external tool server.
// Every raw response is validated at this boundary so malformed server
// output degrades to fewer results, never to opaque data in the graph.
type Client struct {
	cfg       Config
	transport Transport
	logger    *logging.Logger
}

// NewClient starts the configured server process and performs the
// initialize handshake.
func NewClient(cfg Config, logger *logging.Logger) (*Client, error) {
	transport, err := NewStdioTransport(cfg.Command, cfg.Args, logger)
	if err != nil {
		return nil, creerrors.Wrap(creerrors.IndexUnavailable,
			fmt.Sprintf("failed to start tool server %q", cfg.ServerName), err)
	}
	return newClient(cfg, transport, logger)
}

// NewClientWithTransport wires a client over an existing transport.
func NewClientWithTransport(cfg Config, transport Transport, logger *logging.Logger) (*Client, error) {
	return newClient(cfg, transport, logger)
}

func newClient(cfg Config, transport Transport, logger *logging.Logger) (*Client, error) {
	c := &Client{
		cfg:       cfg,
		transport: transport,
		logger:    logger.With("mcpbridge"),
	}

	_, err := transport.Call(context.Background(), "initialize", map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"clientInfo": map[string]string{
			"name":    "cre",
			"version": version.Version,
		},
	})
	if err != nil {
		_ = transport.Close()
		return nil, creerrors.Wrap(creerrors.IndexUnavailable,
			fmt.Sprintf("tool server %q rejected initialize", cfg.ServerName), err)
	}
	_ = transport.Notify("notifications/initialized", nil)

	return c, nil
}

// Name identifies the backend.
func (c *Client) Name() string {
	return "mcp:" + c.cfg.ServerName
}

// Available reports whether the transport is usable.
func (c *Client) Available() bool {
	return c.transport != nil
}

// Close shuts down the server connection.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Search implements index.CodeIndex.
func (c *Client) Search(ctx context.Context, q index.SearchQuery) ([]index.SearchHit, error) {
	var hits []index.SearchHit
	if err := c.callTool(ctx, ToolSearch, q, &hits); err != nil {
		return nil, err
	}
	return index.CleanSearchHits(hits), nil
}

// TraceImports implements index.CodeIndex.
func (c *Client) TraceImports(ctx context.Context, q index.ImportQuery) (*index.ImportTrace, error) {
	var trace index.ImportTrace
	if err := c.callTool(ctx, ToolTraceImports, q, &trace); err != nil {
		return nil, err
	}
	return index.CleanImportTrace(&trace), nil
}

// FindUsages implements index.CodeIndex.
func (c *Client) FindUsages(ctx context.Context, q index.UsageQuery) ([]index.Usage, error) {
	var usages []index.Usage
	if err := c.callTool(ctx, ToolFindUsages, q, &usages); err != nil {
		return nil, err
	}
	return index.CleanUsages(usages), nil
}

// callTool invokes one named tool with a parameter bag and decodes its
// payload into out. Servers may return the payload directly or wrapped in
// tool-call content; both shapes are accepted.
func (c *Client) callTool(ctx context.Context, tool string, args interface{}, out interface{}) error {
	raw, err := c.transport.Call(ctx, "tools/call", toolCallParams{
		Name:      tool,
		Arguments: args,
	})
	if err != nil {
		return creerrors.Wrap(creerrors.ExternalToolFailure,
			fmt.Sprintf("tool %q on server %q failed", tool, c.cfg.ServerName), err)
	}

	payload := []byte(raw)

	// Unwrap content-style results.
	var wrapped toolCallResult
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Content) > 0 {
		if wrapped.IsError {
			return creerrors.New(creerrors.ExternalToolFailure,
				fmt.Sprintf("tool %q reported an error: %s", tool, wrapped.Content[0].Text))
		}
		payload = []byte(wrapped.Content[0].Text)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return creerrors.Wrap(creerrors.ExternalToolFailure,
			fmt.Sprintf("tool %q returned an unparseable payload", tool), err)
	}
	return nil
}
