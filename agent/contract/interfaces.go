package contract

import (
	"context"

	feedbackx "github.com/proffessoro/Sentinele-Protocole/agent/feedback"
	statex "github.com/proffessoro/Sentinele-Protocole/agent/state"
)

type Analyst interface {
	Scan(ctx context.Context, req AnalystRequest) (AnalystResponse, error)
}

type Scout interface {
	Probe(ctx context.Context, req ScoutRequest) (ScoutResponse, error)
}

type Commander interface {
	Decide(ctx context.Context, req DecisionRequest) (DecisionResponse, error)
}

type Registry interface {
	Analyst() Analyst
	Scout() Scout
	Commander() Commander
}

type ToolGateway interface {
	Execute(ctx context.Context, reqs []ToolRequest) ([]ToolResult, error)
}

type FeedbackStore interface {
	Recent(ctx context.Context, limit int) ([]feedbackx.Entry, error)
	Record(ctx context.Context, entry *feedbackx.Entry) error
}

type Notifier interface {
	Alert(ctx context.Context, report *statex.AssessmentReport) error
}
