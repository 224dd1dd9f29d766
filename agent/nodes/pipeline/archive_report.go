package pipelinenode

import (
	"context"
	"fmt"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	statex "github.com/proffessoro/Sentinele-Protocole/agent/state"
)

func ArchiveReport(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
) (*GraphState, error) {
	if in == nil || in.Report == nil {
		return nil, fmt.Errorf("%w: report is nil", contractx.ErrValidation)
	}

	if err := store.Save(ctx, in.Report); err != nil {
		return nil, err
	}
	return in, nil
}
