package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	openaix "github.com/proffessoro/Sentinele-Protocole/pkg/openai"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-4o"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`

	AnalystModel         string  `envconfig:"ANALYST_MODEL" split_words:"true"`
	ScoutModel           string  `envconfig:"SCOUT_MODEL" split_words:"true"`
	CommanderModel       string  `envconfig:"COMMANDER_MODEL" split_words:"true"`
	AnalystTemperature   float32 `envconfig:"ANALYST_TEMPERATURE" split_words:"true" default:"-1"`
	ScoutTemperature     float32 `envconfig:"SCOUT_TEMPERATURE" split_words:"true" default:"-1"`
	CommanderTemperature float32 `envconfig:"COMMANDER_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openai api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenAIFor resolves the model configuration for one crew role, applying
// per-role overrides on top of the defaults. A negative temperature
// override means "not set".
func (c Config) OpenAIFor(role contractx.Role) openaix.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case contractx.RoleAnalyst:
		if v := strings.TrimSpace(c.AnalystModel); v != "" {
			modelName = v
		}
		if c.AnalystTemperature >= 0 {
			temp = c.AnalystTemperature
		}
	case contractx.RoleScout:
		if v := strings.TrimSpace(c.ScoutModel); v != "" {
			modelName = v
		}
		if c.ScoutTemperature >= 0 {
			temp = c.ScoutTemperature
		}
	case contractx.RoleCommander:
		if v := strings.TrimSpace(c.CommanderModel); v != "" {
			modelName = v
		}
		if c.CommanderTemperature >= 0 {
			temp = c.CommanderTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openaix.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}
