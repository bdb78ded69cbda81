// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the donorlens MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Donorlens Report Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_donor_report ---
	s.AddTool(mcp.NewTool("get_donor_report",
		mcp.WithDescription("Build the full donor report (summary, concentration, momentum, retention, recency, trend, acknowledgement, tiers, stewardship) for a gift CSV file."),
		mcp.WithString("path", mcp.Description("Path to the gift CSV file."), mcp.Required()),
		mcp.WithString("as_of", mcp.Description("Report date as YYYY-MM-DD, RFC3339 or 'N days ago'. Defaults to today.")),
	), h.handleGetDonorReport)

	// --- 2. Tool: get_stewardship_queue ---
	s.AddTool(mcp.NewTool("get_stewardship_queue",
		mcp.WithDescription("Rank donors for follow-up by open pledges, lifetime giving and lapse, and list overdue pledges."),
		mcp.WithString("path", mcp.Description("Path to the gift CSV file."), mcp.Required()),
		mcp.WithString("as_of", mcp.Description("Report date. Defaults to today.")),
		mcp.WithNumber("queue_size", mcp.Description("Number of queue entries to return.")),
	), h.handleGetStewardshipQueue)

	// --- 3. Tool: get_retention ---
	s.AddTool(mcp.NewTool("get_retention",
		mcp.WithDescription("Compare donors who gave in the prior 365-day window with the most recent 365-day window."),
		mcp.WithString("path", mcp.Description("Path to the gift CSV file."), mcp.Required()),
		mcp.WithString("as_of", mcp.Description("Report date. Defaults to today.")),
	), h.handleGetRetention)

	return s
}

// StartMCPServer starts the donorlens MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
