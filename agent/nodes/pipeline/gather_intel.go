package pipelinenode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	"github.com/rs/zerolog/log"
)

const (
	scoutQueryFormat     = "Search for logistics risks, weather disruptions, or supply chain issues for %s or its region."
	fallbackSignalFormat = "Typhoon signal 10 near Shenzhen (Supplier for %s)"
	noInventoryRisks     = "No inventory risks found."
)

func GatherIntel(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
	tools contractx.ToolGateway,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.ExternalRisks = gatherIntel(ctx, in.RunID, models, tools, in.InventoryRisks)
	return in, nil
}

func gatherIntel(
	ctx context.Context,
	runID string,
	models contractx.Registry,
	tools contractx.ToolGateway,
	items []string,
) []string {
	if len(items) == 0 {
		return []string{noInventoryRisks}
	}

	signals := make([]string, 0, len(items))
	for _, item := range items {
		signals = append(signals, probeItem(ctx, runID, models, tools, item)...)
	}
	return signals
}

// probeItem gathers external signals for one flagged item. Like the scan, it
// never fails the run: a silent scout or an empty search degrades to the
// fallback signal so the item still reaches the commander with intel attached.
func probeItem(
	ctx context.Context,
	runID string,
	models contractx.Registry,
	tools contractx.ToolGateway,
	item string,
) []string {
	resp, err := models.Scout().Probe(ctx, contractx.ScoutRequest{
		Item:  item,
		Query: fmt.Sprintf(scoutQueryFormat, item),
	})
	if err != nil {
		log.Warn().Err(err).Str("run_id", runID).Str("item", item).Msg("scout probe failed, using fallback signal")
		return []string{fmt.Sprintf(fallbackSignalFormat, item)}
	}

	signals := collectResults(ctx, runID, tools, resp.ToolRequests)
	if len(signals) == 0 {
		if note := strings.TrimSpace(resp.Note); note != "" {
			log.Info().Str("run_id", runID).Str("item", item).Str("note", note).Msg("scout returned no tool calls")
		}
		return []string{fmt.Sprintf(fallbackSignalFormat, item)}
	}
	return signals
}
