package state

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RiskLevel grades one assessment outcome. The three grades are fixed;
// anything else coming back from a model is a schema violation upstream.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskLow      RiskLevel = "LOW"
)

var (
	ErrUnknownRiskLevel = errors.New("unknown risk level")
	ErrNilReport        = errors.New("assessment report is nil")
	ErrInvalidRunID     = errors.New("run id is empty")
)

// ParseRiskLevel normalizes free-form model output into a RiskLevel.
func ParseRiskLevel(raw string) (RiskLevel, error) {
	switch RiskLevel(strings.ToUpper(strings.TrimSpace(raw))) {
	case RiskCritical:
		return RiskCritical, nil
	case RiskHigh:
		return RiskHigh, nil
	case RiskLow:
		return RiskLow, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRiskLevel, raw)
}

// Severity orders levels for alert floors: CRITICAL(3) > HIGH(2) > LOW(1).
// Unknown levels rank 0 so they never clear a floor.
func (l RiskLevel) Severity() int {
	switch l {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskLow:
		return 1
	}
	return 0
}

func (l RiskLevel) Valid() bool {
	return l.Severity() > 0
}

// AssessmentReport is the persistent record of one assessment run:
// what triggered it, what the inventory scan and the intel sweep found,
// and the decision the commander settled on.
type AssessmentReport struct {
	RunID       string    `json:"run_id"`
	Trigger     string    `json:"trigger"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	InventoryRisks []string `json:"inventory_risks,omitempty"`
	ExternalRisks  []string `json:"external_risks,omitempty"`

	RiskLevel RiskLevel `json:"risk_level"`
	Action    string    `json:"action"`
	Summary   string    `json:"summary,omitempty"`
}

func NewAssessmentReport(runID, trigger string, now time.Time) *AssessmentReport {
	return &AssessmentReport{
		RunID:     runID,
		Trigger:   trigger,
		StartedAt: now.UTC(),
	}
}

func (r *AssessmentReport) Complete(now time.Time) {
	r.CompletedAt = now.UTC()
}

func (r *AssessmentReport) Validate() error {
	if r == nil {
		return ErrNilReport
	}
	if strings.TrimSpace(r.RunID) == "" {
		return ErrInvalidRunID
	}
	if !r.RiskLevel.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRiskLevel, string(r.RiskLevel))
	}
	if strings.TrimSpace(r.Action) == "" {
		return errors.New("report action is empty")
	}
	return nil
}

// FinalDecision renders the outcome as the single line printed at the end
// of a run, e.g. "[CRITICAL] Air-freight 2 weeks of stock | typhoon near supplier".
func (r *AssessmentReport) FinalDecision() string {
	if r == nil {
		return ""
	}
	line := fmt.Sprintf("[%s] %s", r.RiskLevel, r.Action)
	if s := strings.TrimSpace(r.Summary); s != "" {
		line += " | " + s
	}
	return line
}
