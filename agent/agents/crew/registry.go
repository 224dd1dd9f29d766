package crew

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	llmx "github.com/proffessoro/Sentinele-Protocole/agent/llm"
	promptx "github.com/proffessoro/Sentinele-Protocole/agent/prompt"
)

type registryImpl struct {
	analyst   contractx.Analyst
	scout     contractx.Scout
	commander contractx.Commander
}

func (r *registryImpl) Analyst() contractx.Analyst {
	return r.analyst
}

func (r *registryImpl) Scout() contractx.Scout {
	return r.scout
}

func (r *registryImpl) Commander() contractx.Commander {
	return r.commander
}

// NewRegistry builds the three role agents from the LLM config and the
// embedded prompts. inventoryTools bind to the analyst and intelTools to the
// scout; the commander runs without tools and answers with structured JSON.
func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	inventoryTools []*schema.ToolInfo,
	intelTools []*schema.ToolInfo,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	analystModelCfg := cfg.OpenAIFor(contractx.RoleAnalyst)
	analystModel, err := analystModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create analyst model: %v", contractx.ErrModelInvoke, err)
	}
	scoutModelCfg := cfg.OpenAIFor(contractx.RoleScout)
	scoutModel, err := scoutModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create scout model: %v", contractx.ErrModelInvoke, err)
	}
	commanderModelCfg := cfg.OpenAIFor(contractx.RoleCommander)
	commanderModel, err := commanderModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create commander model: %v", contractx.ErrModelInvoke, err)
	}

	analyst, err := newAnalyst(ctx, analystModel, prompts.Analyst, inventoryTools)
	if err != nil {
		return nil, err
	}
	scout, err := newScout(ctx, scoutModel, prompts.Scout, intelTools)
	if err != nil {
		return nil, err
	}
	commander, err := newCommander(ctx, commanderModel, prompts.Commander)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		analyst:   analyst,
		scout:     scout,
		commander: commander,
	}, nil
}
