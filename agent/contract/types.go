package contract

import (
	"time"

	statex "github.com/proffessoro/Sentinele-Protocole/agent/state"
)

type Role string

const (
	RoleAnalyst   Role = "analyst"
	RoleScout     Role = "scout"
	RoleCommander Role = "commander"
)

type AnalystRequest struct {
	Directive      string `json:"directive"`
	ThresholdWeeks int    `json:"threshold_weeks"`
}

type AnalystResponse struct {
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
	Note         string        `json:"note,omitempty"`
}

type ScoutRequest struct {
	Item  string `json:"item"`
	Query string `json:"query"`
}

type ScoutResponse struct {
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
	Note         string        `json:"note,omitempty"`
}

type DecisionRequest struct {
	Trigger        string    `json:"trigger"`
	InventoryRisks []string  `json:"inventory_risks"`
	ExternalRisks  []string  `json:"external_risks"`
	FeedbackDigest string    `json:"feedback_digest,omitempty"`
	Now            time.Time `json:"now"`
}

type DecisionResponse struct {
	Level   statex.RiskLevel `json:"risk_level"`
	Action  string           `json:"action"`
	Summary string           `json:"summary,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
