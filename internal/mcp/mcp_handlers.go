package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/donorlens/core"
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// toolConfig clones the base config and applies the shared path and as_of arguments.
func (h *toolHandler) toolConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	path := request.GetString("path", "")
	if path == "" {
		return nil, errors.New("path is required")
	}
	cfg := h.baseCfg.Clone()
	if s := request.GetString("as_of", ""); s != "" {
		asOf, err := contract.ParseAsOf(s, time.Now())
		if err != nil {
			return nil, err
		}
		cfg = h.baseCfg.CloneWithAsOf(asOf)
	}
	cfg.InputPath = path
	return cfg, nil
}

func (h *toolHandler) buildReport(ctx context.Context, cfg *contract.Config) (*schema.DonorReport, error) {
	return core.LoadReport(core.WithSuppressHeader(ctx), cfg, h.mgr)
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetDonorReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.toolConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, err := h.buildReport(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}
	return jsonResult(report), nil
}

func (h *toolHandler) handleGetStewardshipQueue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.toolConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if n := request.GetInt("queue_size", 0); n > 0 {
		cfg.QueueSize = n
	}

	report, err := h.buildReport(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stewardship queue failed: %v", err)), nil
	}
	return jsonResult(struct {
		AsOf             time.Time                 `json:"as_of"`
		StewardshipQueue []schema.StewardshipEntry `json:"stewardship_queue"`
		OverduePledges   []schema.OverduePledge    `json:"overdue_pledges"`
	}{report.AsOf, report.StewardshipQueue, report.OverduePledges}), nil
}

func (h *toolHandler) handleGetRetention(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.toolConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, err := h.buildReport(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("retention failed: %v", err)), nil
	}
	return jsonResult(report.Retention), nil
}
