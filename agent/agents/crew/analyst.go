package crew

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
)

type analystImpl struct {
	planner *toolPlanner
}

func newAnalyst(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	tools []*schema.ToolInfo,
) (*analystImpl, error) {
	planner, err := newToolPlanner(ctx, contractx.RoleAnalyst, chatModel, systemPrompt, tools)
	if err != nil {
		return nil, err
	}
	return &analystImpl{planner: planner}, nil
}

func (a *analystImpl) Scan(ctx context.Context, req contractx.AnalystRequest) (contractx.AnalystResponse, error) {
	if strings.TrimSpace(req.Directive) == "" {
		return contractx.AnalystResponse{}, fmt.Errorf("%w: directive is required", contractx.ErrValidation)
	}
	if req.ThresholdWeeks <= 0 {
		return contractx.AnalystResponse{}, fmt.Errorf("%w: threshold weeks must be > 0", contractx.ErrValidation)
	}

	toolRequests, note, err := a.planner.plan(ctx, map[string]any{
		"directive":       req.Directive,
		"threshold_weeks": req.ThresholdWeeks,
	})
	if err != nil {
		return contractx.AnalystResponse{}, err
	}

	return contractx.AnalystResponse{
		ToolRequests: toolRequests,
		Note:         note,
	}, nil
}
