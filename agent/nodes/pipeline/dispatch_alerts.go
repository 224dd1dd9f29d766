package pipelinenode

import (
	"context"
	"fmt"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	statex "github.com/proffessoro/Sentinele-Protocole/agent/state"
)

// DispatchAlerts pushes the report to the notifier when its severity clears
// the floor. It runs after archival: an alert that cannot be delivered still
// leaves a saved report behind.
func DispatchAlerts(
	ctx context.Context,
	in *GraphState,
	notifier contractx.Notifier,
	floor statex.RiskLevel,
) (*GraphState, error) {
	if in == nil || in.Report == nil {
		return nil, fmt.Errorf("%w: report is nil", contractx.ErrValidation)
	}

	if in.Report.RiskLevel.Severity() < floor.Severity() {
		return in, nil
	}
	if err := notifier.Alert(ctx, in.Report); err != nil {
		return nil, err
	}
	return in, nil
}
