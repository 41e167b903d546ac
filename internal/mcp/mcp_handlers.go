package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/foilact/core"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) handlePredict(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()

	var ids []string
	for id := range strings.SplitSeq(request.GetString("target_ids", ""), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	preds, err := core.Predict(cfg, ids)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("prediction failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(preds, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleComputeActivity(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := core.LineInput{
		Net:           request.GetFloat("net", 0),
		ErrNet:        request.GetFloat("err_net", 0),
		LiveTime:      request.GetFloat("live_time", 0),
		RealTime:      request.GetFloat("real_time", 0),
		HalfLife:      request.GetFloat("half_life", 0),
		ErrHalfLife:   request.GetFloat("err_half_life", 0),
		Unit:          schema.HalfLifeUnit(request.GetString("unit", "")),
		Efficiency:    request.GetFloat("efficiency", 0),
		ErrEfficiency: request.GetFloat("err_efficiency", 0),
		Intensity:     request.GetFloat("intensity", 0),
		ErrIntensity:  request.GetFloat("err_intensity", 0),
		CoolingTime:   request.GetFloat("cooling_time", 0),
	}

	res, err := core.ComputeLineActivity(in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid activity parameters: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleParseReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	sw := h.baseCfg.Software
	if s := request.GetString("software", ""); s != "" {
		sw = schema.Software(strings.ToLower(s))
	}
	if _, ok := schema.ValidSoftware[sw]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported software %q", sw)), nil
	}

	reports, err := core.ParseReportsWithStore(core.WithSuppressHeader(ctx), h.mgr, []string{path}, sw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parsing failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(reports[0], "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
