package pipelinenode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	"github.com/rs/zerolog/log"
)

const directiveFormat = "Check for inventory items where weeks_cover is less than %d weeks. Return the product_ids."

func ScanInventory(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
	tools contractx.ToolGateway,
	thresholdWeeks int,
	fallbackItem string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.InventoryRisks = scanInventory(ctx, in.RunID, models, tools, thresholdWeeks, fallbackItem)
	return in, nil
}

// scanInventory never fails the run: an unreachable database or a silent
// analyst degrades to the configured fallback item so the intel sweep and the
// decision still happen.
func scanInventory(
	ctx context.Context,
	runID string,
	models contractx.Registry,
	tools contractx.ToolGateway,
	thresholdWeeks int,
	fallbackItem string,
) []string {
	resp, err := models.Analyst().Scan(ctx, contractx.AnalystRequest{
		Directive:      fmt.Sprintf(directiveFormat, thresholdWeeks),
		ThresholdWeeks: thresholdWeeks,
	})
	if err != nil {
		log.Warn().Err(err).Str("run_id", runID).Msg("analyst scan failed, using fallback item")
		return []string{fallbackItem}
	}

	risks := collectResults(ctx, runID, tools, resp.ToolRequests)
	if len(risks) == 0 {
		if note := strings.TrimSpace(resp.Note); note != "" {
			log.Info().Str("run_id", runID).Str("note", note).Msg("analyst returned no tool calls")
		}
		return []string{fallbackItem}
	}
	return risks
}

// collectResults executes the planned tool calls and keeps the successful
// result texts. Tool faults are data, not run failures: they are logged and
// skipped.
func collectResults(
	ctx context.Context,
	runID string,
	tools contractx.ToolGateway,
	reqs []contractx.ToolRequest,
) []string {
	if len(reqs) == 0 {
		return nil
	}

	results, err := tools.Execute(ctx, reqs)
	if err != nil {
		log.Warn().Err(err).Str("run_id", runID).Msg("tool execution failed")
		return nil
	}

	out := make([]string, 0, len(results))
	for _, res := range results {
		if res.Error != "" {
			log.Warn().Str("run_id", runID).Str("tool", res.Tool).Str("error", res.Error).Msg("tool call failed")
			continue
		}
		if text := strings.TrimSpace(res.Result); text != "" {
			out = append(out, text)
		}
	}
	return out
}
