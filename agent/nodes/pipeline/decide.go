package pipelinenode

import (
	"context"
	"fmt"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
)

// Decide asks the commander for the run verdict. Commander failures propagate:
// without a decision there is no report to record, archive, or alert on.
func Decide(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	decision, err := models.Commander().Decide(ctx, contractx.DecisionRequest{
		Trigger:        in.Trigger,
		InventoryRisks: in.InventoryRisks,
		ExternalRisks:  in.ExternalRisks,
		FeedbackDigest: in.FeedbackDigest,
		Now:            in.Now,
	})
	if err != nil {
		return nil, err
	}

	in.Decision = decision
	return in, nil
}
