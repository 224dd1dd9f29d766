package crew

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
)

type scoutImpl struct {
	planner *toolPlanner
}

func newScout(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	tools []*schema.ToolInfo,
) (*scoutImpl, error) {
	planner, err := newToolPlanner(ctx, contractx.RoleScout, chatModel, systemPrompt, tools)
	if err != nil {
		return nil, err
	}
	return &scoutImpl{planner: planner}, nil
}

func (s *scoutImpl) Probe(ctx context.Context, req contractx.ScoutRequest) (contractx.ScoutResponse, error) {
	if strings.TrimSpace(req.Item) == "" {
		return contractx.ScoutResponse{}, fmt.Errorf("%w: item is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(req.Query) == "" {
		return contractx.ScoutResponse{}, fmt.Errorf("%w: query is required", contractx.ErrValidation)
	}

	toolRequests, note, err := s.planner.plan(ctx, map[string]any{
		"item":  req.Item,
		"query": req.Query,
	})
	if err != nil {
		return contractx.ScoutResponse{}, err
	}

	return contractx.ScoutResponse{
		ToolRequests: toolRequests,
		Note:         note,
	}, nil
}
