// Package tools exposes the batch entry points as MCP tools so agent clients
// can drive scanning and tagging over the stdio transport.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spectag/spectag/internal/engine"
	"github.com/spectag/spectag/internal/toon"
)

func splitLanguages(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ScanTool handles the spectag_scan MCP tool.
type ScanTool struct {
	eng *engine.Engine
}

// NewScanTool creates a ScanTool.
func NewScanTool(eng *engine.Engine) *ScanTool {
	return &ScanTool{eng: eng}
}

// Definition returns the MCP tool definition for registration.
func (t *ScanTool) Definition() mcp.Tool {
	return mcp.NewTool("spectag_scan",
		mcp.WithDescription(
			"Scan a directory tree for test definitions and report each test with its "+
				"resolved @tags. Tests lacking the required @spec tag are flagged as orphaned. "+
				"Read-only: no file is modified.",
		),
		mcp.WithString("root",
			mcp.Required(),
			mcp.Description("Directory to scan."),
		),
		mcp.WithString("languages",
			mcp.Description("Comma-separated language filter (go, python, javascript, typescript, rust, ruby). Optional."),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'json' (default) or 'toon', a compact tabular form that costs far fewer tokens."),
		),
	)
}

// Handle processes the spectag_scan tool call.
func (t *ScanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := strings.TrimSpace(req.GetString("root", ""))
	if root == "" {
		return mcp.NewToolResultError("'root' is required: the directory to scan"), nil
	}
	reports, err := t.eng.Scan(root, engine.Options{
		Languages: splitLanguages(req.GetString("languages", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.GetString("format", "json") == "toon" {
		return mcp.NewToolResultText(toon.Encode(reports)), nil
	}
	return jsonResult(reports)
}

// AutoTagTool handles the spectag_autotag MCP tool.
type AutoTagTool struct {
	eng *engine.Engine
}

// NewAutoTagTool creates an AutoTagTool.
func NewAutoTagTool(eng *engine.Engine) *AutoTagTool {
	return &AutoTagTool{eng: eng}
}

// Definition returns the MCP tool definition for registration.
func (t *AutoTagTool) Definition() mcp.Tool {
	return mcp.NewTool("spectag_autotag",
		mcp.WithDescription(
			"Insert @spec tag blocks for every untagged test whose file path carries a "+
				"spec identifier (a NNN-kebab-case directory segment). Idempotent: a second "+
				"run makes zero changes. Without write=true this is a dry run.",
		),
		mcp.WithString("root",
			mcp.Required(),
			mcp.Description("Directory to process."),
		),
		mcp.WithBoolean("write",
			mcp.Description("Write changes to disk. Defaults to false (dry run)."),
		),
		mcp.WithString("languages",
			mcp.Description("Comma-separated language filter. Optional."),
		),
	)
}

// Handle processes the spectag_autotag tool call.
func (t *AutoTagTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := strings.TrimSpace(req.GetString("root", ""))
	if root == "" {
		return mcp.NewToolResultError("'root' is required: the directory to process"), nil
	}
	summary, err := t.eng.AutoTag(root, engine.Options{
		Write:     req.GetBool("write", false),
		Languages: splitLanguages(req.GetString("languages", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summary)
}

// StripTool handles the spectag_strip MCP tool.
type StripTool struct {
	eng *engine.Engine
}

// NewStripTool creates a StripTool.
func NewStripTool(eng *engine.Engine) *StripTool {
	return &StripTool{eng: eng}
}

// Definition returns the MCP tool definition for registration.
func (t *StripTool) Definition() mcp.Tool {
	return mcp.NewTool("spectag_strip",
		mcp.WithDescription(
			"Remove every tag-bearing doc-comment block from the given files, plus the "+
				"blank line left behind. A clean-slate reset that works even on files the "+
				"structural parser cannot fully associate.",
		),
		mcp.WithString("files",
			mcp.Required(),
			mcp.Description("Comma-separated file paths to strip."),
		),
	)
}

// Handle processes the spectag_strip tool call.
func (t *StripTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files := splitLanguages(req.GetString("files", ""))
	if len(files) == 0 {
		return mcp.NewToolResultError("'files' is required: comma-separated paths to strip"), nil
	}
	type result struct {
		Path    string `json:"path"`
		Changed bool   `json:"changed"`
		Error   string `json:"error,omitempty"`
	}
	var results []result
	for _, path := range files {
		changed, err := t.eng.StripFile(path)
		r := result{Path: path, Changed: changed}
		if err != nil {
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return jsonResult(results)
}
