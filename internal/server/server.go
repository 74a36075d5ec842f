// Package server wires the MCP components and creates the server instance.
// It is the composition root: concrete implementations are created here and
// injected into the tools that depend on them.
package server

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/server"

	"github.com/spectag/spectag/internal/engine"
	"github.com/spectag/spectag/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with all spectag tools registered.
func New(log hclog.Logger) *server.MCPServer {
	eng := engine.New(log)

	s := server.NewMCPServer(
		"spectag",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	scanTool := tools.NewScanTool(eng)
	s.AddTool(scanTool.Definition(), scanTool.Handle)

	autoTagTool := tools.NewAutoTagTool(eng)
	s.AddTool(autoTagTool.Definition(), autoTagTool.Handle)

	stripTool := tools.NewStripTool(eng)
	s.AddTool(stripTool.Definition(), stripTool.Handle)

	return s
}

const instructions = `spectag associates test definitions with planning specs via @tag
annotations in doc comments.

Workflow:
1. spectag_scan to see every test and which ones are orphaned (missing @spec).
2. spectag_autotag with write=true to insert tags derived from file paths
   (the NNN-kebab-case directory segment supplies the spec identifier).
3. spectag_strip to reset files to an untagged state.

Tags carried per test: @spec (required), @userStory, @requirement,
@testType (unit|integration|e2e), @mockDependent, @retirementCandidate,
@contractTest, @slow.`
