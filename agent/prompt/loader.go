package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/analyst.txt
	analystRaw string

	//go:embed template/scout.txt
	scoutRaw string

	//go:embed template/commander.txt
	commanderRaw string
)

// PromptSet carries the system prompt for each crew role.
type PromptSet struct {
	Analyst   string
	Scout     string
	Commander string
}

// LoadPromptSet returns the embedded role prompts, trimmed.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Analyst:   strings.TrimSpace(analystRaw),
		Scout:     strings.TrimSpace(scoutRaw),
		Commander: strings.TrimSpace(commanderRaw),
	}
}
