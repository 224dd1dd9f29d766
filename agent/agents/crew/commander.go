package crew

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	statex "github.com/proffessoro/Sentinele-Protocole/agent/state"
)

type commanderImpl struct {
	runner compose.Runnable[map[string]any, decisionLLMOutput]
}

type decisionLLMOutput struct {
	RiskLevel string `json:"risk_level"`
	Action    string `json:"action"`
	Summary   string `json:"summary,omitempty"`
}

func newCommander(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*commanderImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: role=%s", contractx.ErrPromptMissing, contractx.RoleCommander)
	}

	runner, err := compileDecisionGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile decision graph: %v", contractx.ErrModelInvoke, err)
	}
	return &commanderImpl{runner: runner}, nil
}

func (c *commanderImpl) Decide(ctx context.Context, req contractx.DecisionRequest) (contractx.DecisionResponse, error) {
	if strings.TrimSpace(req.Trigger) == "" {
		return contractx.DecisionResponse{}, fmt.Errorf("%w: trigger is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"trigger":         req.Trigger,
		"inventory_risks": req.InventoryRisks,
		"external_risks":  req.ExternalRisks,
		"now":             req.Now.UTC().Format(time.RFC3339),
	}
	if strings.TrimSpace(req.FeedbackDigest) != "" {
		payload["feedback_digest"] = req.FeedbackDigest
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.DecisionResponse{}, fmt.Errorf("%w: marshal decision payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.DecisionResponse{}, fmt.Errorf("%w: commander invoke: %v", contractx.ErrModelInvoke, err)
	}

	level, err := statex.ParseRiskLevel(out.RiskLevel)
	if err != nil {
		return contractx.DecisionResponse{}, fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err)
	}
	action := strings.TrimSpace(out.Action)
	if action == "" {
		return contractx.DecisionResponse{}, fmt.Errorf("%w: decision action is empty", contractx.ErrSchemaViolation)
	}

	return contractx.DecisionResponse{
		Level:   level,
		Action:  action,
		Summary: strings.TrimSpace(out.Summary),
	}, nil
}
