package pipelinenode

import (
	"fmt"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	statex "github.com/proffessoro/Sentinele-Protocole/agent/state"
)

func ComposeReport(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	report := statex.NewAssessmentReport(in.RunID, in.Trigger, in.Now)
	report.InventoryRisks = in.InventoryRisks
	report.ExternalRisks = in.ExternalRisks
	report.RiskLevel = in.Decision.Level
	report.Action = in.Decision.Action
	report.Summary = in.Decision.Summary

	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}

	in.Report = report
	return in, nil
}
