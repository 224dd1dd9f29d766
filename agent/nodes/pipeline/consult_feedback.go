package pipelinenode

import (
	"context"
	"fmt"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	feedbackx "github.com/proffessoro/Sentinele-Protocole/agent/feedback"
	"github.com/rs/zerolog/log"
)

// ConsultFeedback loads recent decisions into the digest the commander sees.
// The loop is advisory: a failing store degrades to an empty digest instead of
// aborting the run.
func ConsultFeedback(
	ctx context.Context,
	in *GraphState,
	store contractx.FeedbackStore,
	limit int,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		log.Warn().Err(err).Str("run_id", in.RunID).Msg("feedback lookup failed, continuing without digest")
		in.FeedbackDigest = ""
		return in, nil
	}

	in.FeedbackDigest = feedbackx.Digest(entries)
	return in, nil
}
