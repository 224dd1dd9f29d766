package crew

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
)

// toolPlanner runs one tool-planning round for a role: it feeds the request
// payload to the model and maps the returned tool calls to validated
// contract.ToolRequest values. A turn with no tool calls degrades to a plain
// text note.
type toolPlanner struct {
	role         contractx.Role
	runner       compose.Runnable[map[string]any, *schema.Message]
	allowedTools map[string]struct{}
}

func newToolPlanner(
	ctx context.Context,
	role contractx.Role,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	tools []*schema.ToolInfo,
) (*toolPlanner, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: role=%s", contractx.ErrPromptMissing, role)
	}

	var boundModel einomodel.BaseChatModel = chatModel
	if len(tools) > 0 {
		toolModel, err := chatModel.WithTools(tools)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for role=%s: %v", contractx.ErrModelInvoke, role, err)
		}
		boundModel = toolModel
	}

	runner, err := compileToolPlanningGraph(ctx, boundModel, systemPrompt, fmt.Sprintf("%s.tool_planning_graph", role))
	if err != nil {
		return nil, fmt.Errorf("%w: compile tool planning graph for role=%s: %v", contractx.ErrModelInvoke, role, err)
	}

	allowedTools := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowedTools[t.Name] = struct{}{}
	}

	return &toolPlanner{
		role:         role,
		runner:       runner,
		allowedTools: allowedTools,
	}, nil
}

func (p *toolPlanner) plan(ctx context.Context, payload map[string]any) ([]contractx.ToolRequest, string, error) {
	input, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: marshal %s payload: %v", contractx.ErrValidation, p.role, err)
	}

	msg, err := p.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s invoke: %v", contractx.ErrModelInvoke, p.role, err)
	}
	if msg == nil {
		return nil, "", fmt.Errorf("%w: empty %s response", contractx.ErrSchemaViolation, p.role)
	}

	toolRequests, err := toToolRequests(msg.ToolCalls)
	if err != nil {
		return nil, "", err
	}

	if len(toolRequests) == 0 {
		return nil, strings.TrimSpace(msg.Content), nil
	}

	for _, tr := range toolRequests {
		if _, ok := p.allowedTools[tr.Tool]; !ok {
			return nil, "", fmt.Errorf("%w: tool=%s is not allowed for role=%s", contractx.ErrSchemaViolation, tr.Tool, p.role)
		}
	}

	return toolRequests, "", nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			Tool: tool,
			Args: args,
		})
	}
	return reqs, nil
}
