package pipelinenode

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	statex "github.com/proffessoro/Sentinele-Protocole/agent/state"
)

var ErrInvalidTrigger = errors.New("trigger is empty")

type GraphInput struct {
	Trigger string
}

type GraphOutput struct {
	Report *statex.AssessmentReport
}

type GraphState struct {
	RunID   string
	Trigger string
	Now     time.Time

	InventoryRisks []string
	ExternalRisks  []string
	FeedbackDigest string

	Decision contractx.DecisionResponse
	Report   *statex.AssessmentReport
}

func PrepareRun(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	trigger := strings.TrimSpace(in.Trigger)
	if trigger == "" {
		return nil, ErrInvalidTrigger
	}

	return &GraphState{
		RunID:   uuid.NewString(),
		Trigger: trigger,
		Now:     nowFn().UTC(),
	}, nil
}
