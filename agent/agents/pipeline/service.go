package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	feedbackx "github.com/proffessoro/Sentinele-Protocole/agent/feedback"
	nodex "github.com/proffessoro/Sentinele-Protocole/agent/nodes/pipeline"
	statex "github.com/proffessoro/Sentinele-Protocole/agent/state"
	notifyx "github.com/proffessoro/Sentinele-Protocole/pkg/notify"
	"github.com/rs/zerolog/log"
)

var ErrInvalidTrigger = nodex.ErrInvalidTrigger

// DefaultTrigger is the instruction a scheduled run starts with.
const DefaultTrigger = "Start daily check."

const (
	defaultThresholdWeeks = 4
	defaultFallbackItem   = "Microchip X"
	defaultFeedbackLimit  = 5
)

type Config struct {
	Trigger        string
	ThresholdWeeks int
	FallbackItem   string
	FeedbackLimit  int
	AlertFloor     string
}

// Pipeline runs one full assessment: inventory scan, intel sweep, feedback
// lookup, decision, then persistence and alerting.
type Pipeline struct {
	models         contractx.Registry
	inventoryTools contractx.ToolGateway
	intelTools     contractx.ToolGateway
	feedback       contractx.FeedbackStore
	archive        statex.Store
	notifier       contractx.Notifier

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	trigger        string
	thresholdWeeks int
	fallbackItem   string
	feedbackLimit  int
	alertFloor     statex.RiskLevel

	now func() time.Time
}

func New(
	models contractx.Registry,
	inventoryTools contractx.ToolGateway,
	intelTools contractx.ToolGateway,
	feedback contractx.FeedbackStore,
	archive statex.Store,
	notifier contractx.Notifier,
	cfg Config,
) (*Pipeline, error) {
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if inventoryTools == nil {
		return nil, errors.New("inventory tool gateway is required")
	}
	if intelTools == nil {
		return nil, errors.New("intel tool gateway is required")
	}
	if feedback == nil {
		feedback = noopFeedbackStore{}
	}
	if archive == nil {
		archive = noopArchive{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}

	trigger := strings.TrimSpace(cfg.Trigger)
	if trigger == "" {
		trigger = DefaultTrigger
	}
	thresholdWeeks := cfg.ThresholdWeeks
	if thresholdWeeks <= 0 {
		thresholdWeeks = defaultThresholdWeeks
	}
	fallbackItem := strings.TrimSpace(cfg.FallbackItem)
	if fallbackItem == "" {
		fallbackItem = defaultFallbackItem
	}
	feedbackLimit := cfg.FeedbackLimit
	if feedbackLimit <= 0 {
		feedbackLimit = defaultFeedbackLimit
	}
	alertFloor, err := statex.ParseRiskLevel(cfg.AlertFloor)
	if err != nil {
		alertFloor = statex.RiskCritical
	}

	p := &Pipeline{
		models:         models,
		inventoryTools: inventoryTools,
		intelTools:     intelTools,
		feedback:       feedback,
		archive:        archive,
		notifier:       notifier,
		trigger:        trigger,
		thresholdWeeks: thresholdWeeks,
		fallbackItem:   fallbackItem,
		feedbackLimit:  feedbackLimit,
		alertFloor:     alertFloor,
		now:            time.Now,
	}

	graphRunner, err := p.compileAssessmentGraph(context.Background())
	if err != nil {
		return nil, err
	}
	p.graphRunner = graphRunner

	return p, nil
}

// Run executes one assessment. An empty trigger falls back to the configured
// default.
func (p *Pipeline) Run(ctx context.Context, trigger string) (*statex.AssessmentReport, error) {
	if strings.TrimSpace(trigger) == "" {
		trigger = p.trigger
	}

	log.Info().Str("trigger", trigger).Msg("assessment run started")

	out, err := p.graphRunner.Invoke(ctx, nodex.GraphInput{Trigger: trigger})
	if err != nil {
		return nil, err
	}

	report := out.Report
	log.Info().
		Str("run_id", report.RunID).
		Str("risk_level", string(report.RiskLevel)).
		Str("action", report.Action).
		Msg("assessment run completed")
	return report, nil
}

// WebhookNotifier adapts the notify client to the alerting contract.
type WebhookNotifier struct {
	client *notifyx.Client
}

func NewWebhookNotifier(client *notifyx.Client) (*WebhookNotifier, error) {
	if client == nil {
		return nil, errors.New("notify client is required")
	}
	return &WebhookNotifier{client: client}, nil
}

func (n *WebhookNotifier) Alert(ctx context.Context, report *statex.AssessmentReport) error {
	if report == nil {
		return statex.ErrNilReport
	}
	return n.client.Send(ctx, report)
}

type noopFeedbackStore struct{}

func (noopFeedbackStore) Recent(context.Context, int) ([]feedbackx.Entry, error) {
	return nil, nil
}

func (noopFeedbackStore) Record(context.Context, *feedbackx.Entry) error {
	return nil
}

type noopArchive struct{}

func (noopArchive) Load(context.Context, string) (*statex.AssessmentReport, error) {
	return nil, statex.ErrReportNotFound
}

func (noopArchive) Save(context.Context, *statex.AssessmentReport) error {
	return nil
}

func (noopArchive) Delete(context.Context, string) error {
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Alert(context.Context, *statex.AssessmentReport) error {
	return nil
}
