package feedback

import (
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Entry is one row of the agent_feedback table: the decision a past run
// settled on, kept so later runs can weigh how similar situations were
// handled.
type Entry struct {
	bun.BaseModel `bun:"table:agent_feedback,alias:af"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	RunID     string    `bun:"run_id,notnull" json:"run_id"`
	RiskLevel string    `bun:"risk_level,notnull" json:"risk_level"`
	Action    string    `bun:"action,notnull" json:"action"`
	Summary   string    `bun:"summary" json:"summary,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

func NewEntry(runID, riskLevel, action, summary string, now time.Time) *Entry {
	return &Entry{
		RunID:     runID,
		RiskLevel: riskLevel,
		Action:    action,
		Summary:   summary,
		CreatedAt: now.UTC(),
	}
}

// Digest renders recent entries as the compact block handed to the
// commander prompt. Empty input renders empty so the prompt can drop
// the section entirely.
func Digest(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "- [%s] %s", e.RiskLevel, e.Action)
		if s := strings.TrimSpace(e.Summary); s != "" {
			b.WriteString(" (" + s + ")")
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
