package pipelinenode

import (
	"context"
	"fmt"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	feedbackx "github.com/proffessoro/Sentinele-Protocole/agent/feedback"
)

// RecordFeedback writes the decision into the agent_feedback table so later
// runs can weigh it. Unlike the read side, write failures propagate.
func RecordFeedback(
	ctx context.Context,
	in *GraphState,
	store contractx.FeedbackStore,
) (*GraphState, error) {
	if in == nil || in.Report == nil {
		return nil, fmt.Errorf("%w: report is nil", contractx.ErrValidation)
	}

	entry := feedbackx.NewEntry(in.RunID, string(in.Decision.Level), in.Decision.Action, in.Decision.Summary, in.Now)
	if err := store.Record(ctx, entry); err != nil {
		return nil, err
	}
	return in, nil
}
