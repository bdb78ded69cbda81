package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/iocache"
	mcp_internal "github.com/huangsam/donorlens/internal/mcp"
	"github.com/huangsam/donorlens/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		Settings:  schema.DefaultSettings(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)),
		Precision: 2,
		Output:    schema.JSONOut,
	}
}

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetIngestStore").Return(nil)
	mgr.On("GetHistoryStore").Return(nil)

	s := mcp_internal.NewMCPServer(baseConfig(), mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{name: "report missing path", tool: "get_donor_report", args: map[string]any{}, contains: "path is required"},
		{name: "queue bad as_of", tool: "get_stewardship_queue", args: map[string]any{"path": "testdata/gifts.csv", "as_of": "next tuesday"}, contains: "invalid parameters"},
		{name: "retention missing file", tool: "get_retention", args: map[string]any{"path": "testdata/missing.csv"}, contains: "retention failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.contains)
		})
	}
}

func TestGetDonorReport(t *testing.T) {
	res := callTool(t, "get_donor_report", map[string]any{"path": "testdata/gifts.csv"})
	require.False(t, res.IsError, resultText(t, res))

	var report schema.DonorReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, 4, report.Summary.DonorCount)
	assert.Len(t, report.MonthlyTrend, schema.TrendMonths)
	assert.Len(t, report.Warnings, 2)
}

func TestGetDonorReportAsOfOverride(t *testing.T) {
	res := callTool(t, "get_donor_report", map[string]any{"path": "testdata/gifts.csv", "as_of": "2024-01-31"})
	require.False(t, res.IsError, resultText(t, res))

	var report schema.DonorReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, "2024-01", report.MonthlyTrend[schema.TrendMonths-1].Month)
}

func TestGetStewardshipQueue(t *testing.T) {
	res := callTool(t, "get_stewardship_queue", map[string]any{"path": "testdata/gifts.csv", "queue_size": 1.0})
	require.False(t, res.IsError, resultText(t, res))

	var out struct {
		StewardshipQueue []schema.StewardshipEntry `json:"stewardship_queue"`
		OverduePledges   []schema.OverduePledge    `json:"overdue_pledges"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.Len(t, out.StewardshipQueue, 1)
	assert.Equal(t, schema.DonorKey("D2"), out.StewardshipQueue[0].Key)
	require.Len(t, out.OverduePledges, 1)
	assert.Equal(t, 10, out.OverduePledges[0].DaysOverdue)
}

func TestGetRetention(t *testing.T) {
	res := callTool(t, "get_retention", map[string]any{"path": "testdata/gifts.csv"})
	require.False(t, res.IsError, resultText(t, res))

	var ret schema.RetentionResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &ret))
	assert.Equal(t, ret.PriorDonors, ret.Retained+ret.Churned)
	assert.Equal(t, ret.RecentDonors, ret.Retained+ret.Reactivated)
}
