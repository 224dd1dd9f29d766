package pipeline

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/proffessoro/Sentinele-Protocole/agent/nodes/pipeline"
	"github.com/rs/zerolog/log"
)

func (p *Pipeline) compileAssessmentGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("prepare_run",
		compose.InvokableLambda(traceNode("prepare_run", func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.PrepareRun(in, p.now)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node prepare_run: %w", err)
	}

	if err := graph.AddLambdaNode("scan_inventory",
		compose.InvokableLambda(traceNode("scan_inventory", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ScanInventory(ctx, in, p.models, p.inventoryTools, p.thresholdWeeks, p.fallbackItem)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node scan_inventory: %w", err)
	}

	if err := graph.AddLambdaNode("gather_intel",
		compose.InvokableLambda(traceNode("gather_intel", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.GatherIntel(ctx, in, p.models, p.intelTools)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node gather_intel: %w", err)
	}

	if err := graph.AddLambdaNode("consult_feedback",
		compose.InvokableLambda(traceNode("consult_feedback", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ConsultFeedback(ctx, in, p.feedback, p.feedbackLimit)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node consult_feedback: %w", err)
	}

	if err := graph.AddLambdaNode("decide",
		compose.InvokableLambda(traceNode("decide", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Decide(ctx, in, p.models)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node decide: %w", err)
	}

	if err := graph.AddLambdaNode("compose_report",
		compose.InvokableLambda(traceNode("compose_report", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ComposeReport(in)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node compose_report: %w", err)
	}

	if err := graph.AddLambdaNode("record_feedback",
		compose.InvokableLambda(traceNode("record_feedback", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordFeedback(ctx, in, p.feedback)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node record_feedback: %w", err)
	}

	if err := graph.AddLambdaNode("archive_report",
		compose.InvokableLambda(traceNode("archive_report", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ArchiveReport(ctx, in, p.archive)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node archive_report: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_alerts",
		compose.InvokableLambda(traceNode("dispatch_alerts", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DispatchAlerts(ctx, in, p.notifier, p.alertFloor)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_alerts: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(traceNode("finalize", func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Finalize(in)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	edges := [][2]string{
		{compose.START, "prepare_run"},
		{"prepare_run", "scan_inventory"},
		{"scan_inventory", "gather_intel"},
		{"gather_intel", "consult_feedback"},
		{"consult_feedback", "decide"},
		{"decide", "compose_report"},
		{"compose_report", "record_feedback"},
		{"record_feedback", "archive_report"},
		{"archive_report", "dispatch_alerts"},
		{"dispatch_alerts", "finalize"},
		{"finalize", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("pipeline.assessment_run"))
	if err != nil {
		return nil, fmt.Errorf("compile assessment graph: %w", err)
	}
	return runner, nil
}

// traceNode wraps a node function with start/outcome logging, the run-time
// view of the linear chain.
func traceNode[I, O any](name string, fn func(context.Context, I) (O, error)) func(context.Context, I) (O, error) {
	return func(ctx context.Context, in I) (O, error) {
		log.Debug().Str("node", name).Msg("pipeline node start")
		out, err := fn(ctx, in)
		if err != nil {
			log.Warn().Str("node", name).Err(err).Msg("pipeline node failed")
			return out, err
		}
		log.Debug().Str("node", name).Msg("pipeline node done")
		return out, err
	}
}
