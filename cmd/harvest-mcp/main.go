// Command harvest-mcp exposes a running harvest server to MCP clients over
// stdio.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeRequest mirrors the harvest API request model.
type scrapeRequest struct {
	Source  string        `json:"source"`
	Format  string        `json:"format,omitempty"`
	Options scrapeOptions `json:"options,omitempty"`
}

type scrapeOptions struct {
	Limit   *int `json:"limit,omitempty"`
	Timeout *int `json:"timeout,omitempty"`
}

// scrapeResponse mirrors the harvest API response envelope.
type scrapeResponse struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	ErrorCode string          `json:"errorCode"`
	Metadata  struct {
		Source      string `json:"source"`
		Format      string `json:"format"`
		Duration    int64  `json:"duration"`
		RecordCount *int   `json:"recordCount"`
	} `json:"metadata"`
}

// client talks to the harvest HTTP API.
type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func main() {
	apiURL := os.Getenv("HARVEST_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	c := &client{
		baseURL: strings.TrimRight(apiURL, "/"),
		apiKey:  os.Getenv("HARVEST_API_KEY"),
		http:    &http.Client{Timeout: 150 * time.Second},
	}

	if err := server.ServeStdio(newServer(c)); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(c *client) *server.MCPServer {
	s := server.NewMCPServer(
		"harvest",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	listSourcesTool := mcp.NewTool("list_sources",
		mcp.WithDescription("List the enabled data sources, with their ids, supported formats and timeouts."),
	)
	s.AddTool(listSourcesTool, handleListSources(c))

	scrapeSourceTool := mcp.NewTool("scrape_source",
		mcp.WithDescription("Extract records from one registered source and return them as JSON, CSV or XML."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Source id, as returned by list_sources"),
		),
		mcp.WithString("format",
			mcp.Description("Output format (default: the source's default format)"),
			mcp.Enum("json", "csv", "xml"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of records to return (must be positive)"),
		),
		mcp.WithNumber("timeout_ms",
			mcp.Description("Per-call timeout in milliseconds"),
		),
	)
	s.AddTool(scrapeSourceTool, handleScrapeSource(c))

	statusTool := mcp.NewTool("get_status",
		mcp.WithDescription("Report active sources, total scrapes and the most recent scrape attempts."),
	)
	s.AddTool(statusTool, handleGetStatus(c))

	return s
}

// do sends a request to the harvest API and returns the status and body.
func (c *client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// passthrough returns a GET endpoint's body as pretty JSON.
func passthrough(c *client, path string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status, body, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(fmt.Sprintf("API returned %d: %s", status, body)), nil
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			return mcp.NewToolResultText(string(body)), nil
		}
		return mcp.NewToolResultText(pretty.String()), nil
	}
}

func handleListSources(c *client) server.ToolHandlerFunc {
	return passthrough(c, "/api/v1/sources")
}

func handleGetStatus(c *client) server.ToolHandlerFunc {
	return passthrough(c, "/api/v1/status")
}

func handleScrapeSource(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, err := request.RequireString("source")
		if err != nil {
			return mcp.NewToolResultError("source is required"), nil
		}

		reqBody := scrapeRequest{
			Source: source,
			Format: request.GetString("format", ""),
		}
		if limit := request.GetInt("limit", 0); limit != 0 {
			reqBody.Options.Limit = &limit
		}
		if timeout := request.GetInt("timeout_ms", 0); timeout > 0 {
			reqBody.Options.Timeout = &timeout
		}

		_, body, err := c.do(ctx, http.MethodPost, "/api/v1/scrape", reqBody)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp scrapeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			msg := resp.Error
			if msg == "" {
				msg = "scrape failed"
			}
			if resp.ErrorCode != "" {
				msg = fmt.Sprintf("[%s] %s", resp.ErrorCode, msg)
			}
			return mcp.NewToolResultError(msg), nil
		}

		return mcp.NewToolResultText(formatResult(&resp)), nil
	}
}

// formatResult renders a successful envelope as a header line plus payload.
// CSV and XML arrive as JSON strings and are unquoted.
func formatResult(resp *scrapeResponse) string {
	var sb strings.Builder
	count := 0
	if resp.Metadata.RecordCount != nil {
		count = *resp.Metadata.RecordCount
	}
	fmt.Fprintf(&sb, "%d records from %s (%s, %dms)\n\n",
		count, resp.Metadata.Source, resp.Metadata.Format, resp.Metadata.Duration)

	var text string
	if err := json.Unmarshal(resp.Data, &text); err == nil {
		sb.WriteString(text)
		return sb.String()
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Data, "", "  "); err != nil {
		sb.Write(resp.Data)
		return sb.String()
	}
	sb.Write(pretty.Bytes())
	return sb.String()
}
