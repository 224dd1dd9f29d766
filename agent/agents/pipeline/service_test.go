package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	feedbackx "github.com/proffessoro/Sentinele-Protocole/agent/feedback"
	statex "github.com/proffessoro/Sentinele-Protocole/agent/state"
)

type fakeAnalyst struct {
	resp  contractx.AnalystResponse
	err   error
	calls int
	reqs  []contractx.AnalystRequest
}

func (f *fakeAnalyst) Scan(ctx context.Context, req contractx.AnalystRequest) (contractx.AnalystResponse, error) {
	f.calls++
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return contractx.AnalystResponse{}, f.err
	}
	return f.resp, nil
}

type fakeScout struct {
	resp  contractx.ScoutResponse
	err   error
	calls int
	reqs  []contractx.ScoutRequest
}

func (f *fakeScout) Probe(ctx context.Context, req contractx.ScoutRequest) (contractx.ScoutResponse, error) {
	f.calls++
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return contractx.ScoutResponse{}, f.err
	}
	return f.resp, nil
}

type fakeCommander struct {
	resp  contractx.DecisionResponse
	err   error
	calls int
	reqs  []contractx.DecisionRequest
}

func (f *fakeCommander) Decide(ctx context.Context, req contractx.DecisionRequest) (contractx.DecisionResponse, error) {
	f.calls++
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return contractx.DecisionResponse{}, f.err
	}
	return f.resp, nil
}

type fakeRegistry struct {
	analyst   contractx.Analyst
	scout     contractx.Scout
	commander contractx.Commander
}

func (f *fakeRegistry) Analyst() contractx.Analyst {
	return f.analyst
}

func (f *fakeRegistry) Scout() contractx.Scout {
	return f.scout
}

func (f *fakeRegistry) Commander() contractx.Commander {
	return f.commander
}

type fakeGateway struct {
	results []contractx.ToolResult
	err     error
	calls   [][]contractx.ToolRequest
}

func (f *fakeGateway) Execute(ctx context.Context, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	f.calls = append(f.calls, append([]contractx.ToolRequest(nil), reqs...))
	if f.err != nil {
		return nil, f.err
	}
	return append([]contractx.ToolResult(nil), f.results...), nil
}

type fakeFeedback struct {
	entries   []feedbackx.Entry
	recentErr error
	recordErr error
	recorded  []*feedbackx.Entry
}

func (f *fakeFeedback) Recent(ctx context.Context, limit int) ([]feedbackx.Entry, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return append([]feedbackx.Entry(nil), f.entries...), nil
}

func (f *fakeFeedback) Record(ctx context.Context, entry *feedbackx.Entry) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, entry)
	return nil
}

type fakeArchive struct {
	saveErr error
	saved   []*statex.AssessmentReport
}

func (f *fakeArchive) Load(ctx context.Context, runID string) (*statex.AssessmentReport, error) {
	return nil, statex.ErrReportNotFound
}

func (f *fakeArchive) Save(ctx context.Context, report *statex.AssessmentReport) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, report)
	return nil
}

func (f *fakeArchive) Delete(ctx context.Context, runID string) error {
	return nil
}

type fakeNotifier struct {
	err    error
	alerts []*statex.AssessmentReport
}

func (f *fakeNotifier) Alert(ctx context.Context, report *statex.AssessmentReport) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, report)
	return nil
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()

	analyst := &fakeAnalyst{
		resp: contractx.AnalystResponse{
			ToolRequests: []contractx.ToolRequest{
				{Tool: "query", Args: map[string]any{"sql": "SELECT product_id FROM inventory WHERE weeks_cover < 4"}},
			},
		},
	}
	scout := &fakeScout{
		resp: contractx.ScoutResponse{
			ToolRequests: []contractx.ToolRequest{
				{Tool: "qdrant-find", Args: map[string]any{"query": "logistics risks for PROD-7"}},
			},
		},
	}
	commander := &fakeCommander{
		resp: contractx.DecisionResponse{
			Level:   statex.RiskCritical,
			Action:  "Expedite alternate sourcing for PROD-7.",
			Summary: "Port congestion threatens resupply.",
		},
	}
	inventoryTools := &fakeGateway{
		results: []contractx.ToolResult{{Tool: "query", Result: "PROD-7"}},
	}
	intelTools := &fakeGateway{
		results: []contractx.ToolResult{{Tool: "qdrant-find", Result: "Port congestion near Kaohsiung"}},
	}
	feedback := &fakeFeedback{
		entries: []feedbackx.Entry{
			{RunID: "run-old", RiskLevel: "HIGH", Action: "Re-route shipments.", Summary: "Prior storm"},
		},
	}
	archive := &fakeArchive{}
	notifier := &fakeNotifier{}

	p := newTestPipeline(t,
		&fakeRegistry{analyst: analyst, scout: scout, commander: commander},
		inventoryTools, intelTools, feedback, archive, notifier,
		Config{},
	)

	report, err := p.Run(context.Background(), "Start daily check.")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report == nil {
		t.Fatal("expected report")
	}
	if report.RunID == "" {
		t.Fatal("expected run id")
	}
	if report.RiskLevel != statex.RiskCritical {
		t.Fatalf("unexpected risk level: %s", report.RiskLevel)
	}
	if len(report.InventoryRisks) != 1 || report.InventoryRisks[0] != "PROD-7" {
		t.Fatalf("unexpected inventory risks: %#v", report.InventoryRisks)
	}
	if len(report.ExternalRisks) != 1 || report.ExternalRisks[0] != "Port congestion near Kaohsiung" {
		t.Fatalf("unexpected external risks: %#v", report.ExternalRisks)
	}

	if analyst.calls != 1 {
		t.Fatalf("expected one analyst call, got %d", analyst.calls)
	}
	if scout.calls != 1 {
		t.Fatalf("expected one scout call, got %d", scout.calls)
	}
	if scout.reqs[0].Item != "PROD-7" {
		t.Fatalf("unexpected scout item: %q", scout.reqs[0].Item)
	}
	if !strings.Contains(scout.reqs[0].Query, "PROD-7 or its region") {
		t.Fatalf("unexpected scout query: %q", scout.reqs[0].Query)
	}

	if commander.calls != 1 {
		t.Fatalf("expected one commander call, got %d", commander.calls)
	}
	decisionReq := commander.reqs[0]
	if decisionReq.Trigger != "Start daily check." {
		t.Fatalf("unexpected trigger: %q", decisionReq.Trigger)
	}
	if !strings.Contains(decisionReq.FeedbackDigest, "[HIGH] Re-route shipments.") {
		t.Fatalf("unexpected feedback digest: %q", decisionReq.FeedbackDigest)
	}

	if len(feedback.recorded) != 1 {
		t.Fatalf("expected one feedback record, got %d", len(feedback.recorded))
	}
	if feedback.recorded[0].RiskLevel != "CRITICAL" {
		t.Fatalf("unexpected recorded level: %s", feedback.recorded[0].RiskLevel)
	}
	if len(archive.saved) != 1 {
		t.Fatalf("expected one archived report, got %d", len(archive.saved))
	}
	if len(notifier.alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(notifier.alerts))
	}
}

func TestRunEmptyTriggerUsesDefault(t *testing.T) {
	t.Parallel()

	commander := &fakeCommander{
		resp: contractx.DecisionResponse{Level: statex.RiskLow, Action: "Monitor."},
	}

	p := newTestPipeline(t,
		&fakeRegistry{
			analyst:   &fakeAnalyst{err: errors.New("db down")},
			scout:     &fakeScout{err: errors.New("search down")},
			commander: commander,
		},
		&fakeGateway{}, &fakeGateway{}, &fakeFeedback{}, &fakeArchive{}, &fakeNotifier{},
		Config{},
	)

	if _, err := p.Run(context.Background(), "   "); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if commander.reqs[0].Trigger != DefaultTrigger {
		t.Fatalf("unexpected trigger: %q", commander.reqs[0].Trigger)
	}
}

func TestRunDegradesToFallbacks(t *testing.T) {
	t.Parallel()

	scout := &fakeScout{err: errors.New("vector store unreachable")}
	commander := &fakeCommander{
		resp: contractx.DecisionResponse{Level: statex.RiskHigh, Action: "Re-check tomorrow."},
	}

	p := newTestPipeline(t,
		&fakeRegistry{
			analyst:   &fakeAnalyst{err: errors.New("erp unreachable")},
			scout:     scout,
			commander: commander,
		},
		&fakeGateway{}, &fakeGateway{}, &fakeFeedback{}, &fakeArchive{}, &fakeNotifier{},
		Config{},
	)

	report, err := p.Run(context.Background(), "Start daily check.")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.InventoryRisks) != 1 || report.InventoryRisks[0] != "Microchip X" {
		t.Fatalf("unexpected inventory risks: %#v", report.InventoryRisks)
	}
	if len(report.ExternalRisks) != 1 || report.ExternalRisks[0] != "Typhoon signal 10 near Shenzhen (Supplier for Microchip X)" {
		t.Fatalf("unexpected external risks: %#v", report.ExternalRisks)
	}
	if scout.reqs[0].Item != "Microchip X" {
		t.Fatalf("unexpected scout item: %q", scout.reqs[0].Item)
	}
}

func TestRunFeedbackReadDegrades(t *testing.T) {
	t.Parallel()

	commander := &fakeCommander{
		resp: contractx.DecisionResponse{Level: statex.RiskLow, Action: "Monitor."},
	}
	feedback := &fakeFeedback{recentErr: errors.New("feedback table missing")}

	p := newTestPipeline(t,
		&fakeRegistry{
			analyst:   &fakeAnalyst{err: errors.New("erp unreachable")},
			scout:     &fakeScout{err: errors.New("vector store unreachable")},
			commander: commander,
		},
		&fakeGateway{}, &fakeGateway{}, feedback, &fakeArchive{}, &fakeNotifier{},
		Config{},
	)

	if _, err := p.Run(context.Background(), "Start daily check."); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if commander.reqs[0].FeedbackDigest != "" {
		t.Fatalf("expected empty digest, got %q", commander.reqs[0].FeedbackDigest)
	}
	if len(feedback.recorded) != 1 {
		t.Fatalf("expected decision still recorded, got %d", len(feedback.recorded))
	}
}

func TestRunCommanderErrorPropagates(t *testing.T) {
	t.Parallel()

	decideErr := errors.New("model refused")
	feedback := &fakeFeedback{}
	archive := &fakeArchive{}
	notifier := &fakeNotifier{}

	p := newTestPipeline(t,
		&fakeRegistry{
			analyst:   &fakeAnalyst{err: errors.New("erp unreachable")},
			scout:     &fakeScout{err: errors.New("vector store unreachable")},
			commander: &fakeCommander{err: decideErr},
		},
		&fakeGateway{}, &fakeGateway{}, feedback, archive, notifier,
		Config{},
	)

	_, err := p.Run(context.Background(), "Start daily check.")
	if !errors.Is(err, decideErr) {
		t.Fatalf("expected decide error, got %v", err)
	}
	if len(feedback.recorded) != 0 {
		t.Fatalf("no feedback must be recorded without a decision, got %d", len(feedback.recorded))
	}
	if len(archive.saved) != 0 {
		t.Fatalf("no report must be archived without a decision, got %d", len(archive.saved))
	}
	if len(notifier.alerts) != 0 {
		t.Fatalf("no alert must fire without a decision, got %d", len(notifier.alerts))
	}
}

func TestRunAlertSkippedBelowFloor(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	archive := &fakeArchive{}

	p := newTestPipeline(t,
		&fakeRegistry{
			analyst:   &fakeAnalyst{err: errors.New("erp unreachable")},
			scout:     &fakeScout{err: errors.New("vector store unreachable")},
			commander: &fakeCommander{resp: contractx.DecisionResponse{Level: statex.RiskHigh, Action: "Watch closely."}},
		},
		&fakeGateway{}, &fakeGateway{}, &fakeFeedback{}, archive, notifier,
		Config{},
	)

	if _, err := p.Run(context.Background(), "Start daily check."); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(notifier.alerts) != 0 {
		t.Fatalf("HIGH must not clear the CRITICAL floor, got %d alerts", len(notifier.alerts))
	}
	if len(archive.saved) != 1 {
		t.Fatalf("expected report archived, got %d", len(archive.saved))
	}
}

func TestRunAlertFloorConfigurable(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}

	p := newTestPipeline(t,
		&fakeRegistry{
			analyst:   &fakeAnalyst{err: errors.New("erp unreachable")},
			scout:     &fakeScout{err: errors.New("vector store unreachable")},
			commander: &fakeCommander{resp: contractx.DecisionResponse{Level: statex.RiskHigh, Action: "Watch closely."}},
		},
		&fakeGateway{}, &fakeGateway{}, &fakeFeedback{}, &fakeArchive{}, notifier,
		Config{AlertFloor: "HIGH"},
	)

	if _, err := p.Run(context.Background(), "Start daily check."); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(notifier.alerts) != 1 {
		t.Fatalf("expected alert at HIGH floor, got %d", len(notifier.alerts))
	}
}

func TestRunArchiveErrorStopsAlerts(t *testing.T) {
	t.Parallel()

	saveErr := errors.New("redis down")
	notifier := &fakeNotifier{}

	p := newTestPipeline(t,
		&fakeRegistry{
			analyst:   &fakeAnalyst{err: errors.New("erp unreachable")},
			scout:     &fakeScout{err: errors.New("vector store unreachable")},
			commander: &fakeCommander{resp: contractx.DecisionResponse{Level: statex.RiskCritical, Action: "Act now."}},
		},
		&fakeGateway{}, &fakeGateway{}, &fakeFeedback{}, &fakeArchive{saveErr: saveErr}, notifier,
		Config{},
	)

	_, err := p.Run(context.Background(), "Start daily check.")
	if !errors.Is(err, saveErr) {
		t.Fatalf("expected archive error, got %v", err)
	}
	if len(notifier.alerts) != 0 {
		t.Fatalf("alert must not fire when archival failed, got %d", len(notifier.alerts))
	}
}

func TestRunRecordErrorStopsArchive(t *testing.T) {
	t.Parallel()

	recordErr := errors.New("insert failed")
	archive := &fakeArchive{}

	p := newTestPipeline(t,
		&fakeRegistry{
			analyst:   &fakeAnalyst{err: errors.New("erp unreachable")},
			scout:     &fakeScout{err: errors.New("vector store unreachable")},
			commander: &fakeCommander{resp: contractx.DecisionResponse{Level: statex.RiskCritical, Action: "Act now."}},
		},
		&fakeGateway{}, &fakeGateway{}, &fakeFeedback{recordErr: recordErr}, archive, &fakeNotifier{},
		Config{},
	)

	_, err := p.Run(context.Background(), "Start daily check.")
	if !errors.Is(err, recordErr) {
		t.Fatalf("expected record error, got %v", err)
	}
	if len(archive.saved) != 0 {
		t.Fatalf("report must not be archived after record failure, got %d", len(archive.saved))
	}
}

func TestNewRequiresCoreDeps(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{
		analyst:   &fakeAnalyst{},
		scout:     &fakeScout{},
		commander: &fakeCommander{},
	}

	if _, err := New(nil, &fakeGateway{}, &fakeGateway{}, nil, nil, nil, Config{}); err == nil {
		t.Fatal("expected error for nil registry")
	}
	if _, err := New(registry, nil, &fakeGateway{}, nil, nil, nil, Config{}); err == nil {
		t.Fatal("expected error for nil inventory gateway")
	}
	if _, err := New(registry, &fakeGateway{}, nil, nil, nil, nil, Config{}); err == nil {
		t.Fatal("expected error for nil intel gateway")
	}

	p, err := New(registry, &fakeGateway{}, &fakeGateway{}, nil, nil, nil, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p == nil {
		t.Fatal("expected pipeline")
	}
}

func TestRunInvalidTrigger(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t,
		&fakeRegistry{
			analyst:   &fakeAnalyst{},
			scout:     &fakeScout{},
			commander: &fakeCommander{},
		},
		&fakeGateway{}, &fakeGateway{}, &fakeFeedback{}, &fakeArchive{}, &fakeNotifier{},
		Config{Trigger: "Start daily check."},
	)

	// Run falls back to the configured trigger, so force a blank one to reach
	// the node check.
	p.trigger = "   "
	_, err := p.Run(context.Background(), "")
	if !errors.Is(err, ErrInvalidTrigger) {
		t.Fatalf("expected ErrInvalidTrigger, got %v", err)
	}
}

func newTestPipeline(
	t *testing.T,
	registry contractx.Registry,
	inventoryTools contractx.ToolGateway,
	intelTools contractx.ToolGateway,
	feedback contractx.FeedbackStore,
	archive statex.Store,
	notifier contractx.Notifier,
	cfg Config,
) *Pipeline {
	t.Helper()
	p, err := New(registry, inventoryTools, intelTools, feedback, archive, notifier, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}
