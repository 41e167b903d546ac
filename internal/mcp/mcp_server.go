// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the foilact MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Foil Activity Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: predict_eob_activity ---
	s.AddTool(mcp.NewTool("predict_eob_activity",
		mcp.WithDescription("Predict the end-of-bombardment activity of every radionuclide in irradiated targets from monitor cross-sections."),
		mcp.WithString("target_ids", mcp.Description("Comma-separated target numbers (defaults to every target in the irradiation log).")),
	), h.handlePredict)

	// --- 2. Tool: compute_activity ---
	s.AddTool(mcp.NewTool("compute_activity",
		mcp.WithDescription("Turn the net area of one gamma line into an activity at acquisition start and at end of bombardment."),
		mcp.WithNumber("net", mcp.Description("Net peak area (counts)."), mcp.Required()),
		mcp.WithNumber("err_net", mcp.Description("Uncertainty of the net peak area.")),
		mcp.WithNumber("live_time", mcp.Description("Live time (s)."), mcp.Required()),
		mcp.WithNumber("real_time", mcp.Description("Real time (s)."), mcp.Required()),
		mcp.WithNumber("half_life", mcp.Description("Half-life in the given unit."), mcp.Required()),
		mcp.WithNumber("err_half_life", mcp.Description("Half-life uncertainty in the given unit.")),
		mcp.WithString("unit", mcp.Description("Half-life unit."), mcp.Enum("s", "m", "h", "d", "y"), mcp.Required()),
		mcp.WithNumber("efficiency", mcp.Description("Full-energy peak efficiency at the line energy."), mcp.Required()),
		mcp.WithNumber("err_efficiency", mcp.Description("Efficiency uncertainty.")),
		mcp.WithNumber("intensity", mcp.Description("Emission probability (%)."), mcp.Required()),
		mcp.WithNumber("err_intensity", mcp.Description("Emission probability uncertainty (%).")),
		mcp.WithNumber("cooling_time", mcp.Description("Seconds between end of bombardment and acquisition start.")),
	), h.handleComputeActivity)

	// --- 3. Tool: parse_report ---
	s.AddTool(mcp.NewTool("parse_report",
		mcp.WithDescription("Parse a gamma spectrometry report and return its acquisition metadata and peaks."),
		mcp.WithString("path", mcp.Description("Path to the report file."), mcp.Required()),
		mcp.WithString("software", mcp.Description("Report format (defaults to the configured software)."), mcp.Enum("interwinner", "genie2k")),
	), h.handleParseReport)

	return s
}

// StartMCPServer starts the foilact MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
