package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	crewx "github.com/proffessoro/Sentinele-Protocole/agent/agents/crew"
	pipelinex "github.com/proffessoro/Sentinele-Protocole/agent/agents/pipeline"
	contractx "github.com/proffessoro/Sentinele-Protocole/agent/contract"
	feedbackx "github.com/proffessoro/Sentinele-Protocole/agent/feedback"
	llmx "github.com/proffessoro/Sentinele-Protocole/agent/llm"
	mcpx "github.com/proffessoro/Sentinele-Protocole/agent/mcp"
	statex "github.com/proffessoro/Sentinele-Protocole/agent/state"
	configx "github.com/proffessoro/Sentinele-Protocole/pkg/config"
	_ "github.com/proffessoro/Sentinele-Protocole/pkg/logger/autoload"
	notifyx "github.com/proffessoro/Sentinele-Protocole/pkg/notify"
	openaix "github.com/proffessoro/Sentinele-Protocole/pkg/openai"
	"github.com/rs/zerolog/log"
)

type AppConfig struct {
	Trigger        string `envconfig:"TRIGGER" default:"Start daily check."`
	ThresholdWeeks int    `envconfig:"THRESHOLD_WEEKS" split_words:"true" default:"4"`
	FallbackItem   string `envconfig:"FALLBACK_ITEM" split_words:"true" default:"Microchip X"`
	FeedbackLimit  int    `envconfig:"FEEDBACK_LIMIT" split_words:"true" default:"5"`
	AlertFloor     string `envconfig:"ALERT_FLOOR" split_words:"true" default:"CRITICAL"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("assessment run failed")
	}
}

func run(ctx context.Context) error {
	appCfg := configx.MustLoad[AppConfig]("SENTINEL")
	llmCfg := configx.MustLoad[llmx.Config]("LLM")

	openaiCfg := configx.MustLoad[openaix.Config]("LLM")
	openaiClient := openaix.NewClient(*openaiCfg)
	if openaiClient == nil {
		return errors.New("failed to initialize openai client")
	}
	if err := openaix.Preflight(ctx, openaiClient, openaiCfg.Model); err != nil {
		return err
	}

	postgresCfg := configx.MustLoad[mcpx.PostgresConfig]("MCP_POSTGRES")
	inventorySession := mcpx.NewSession(postgresCfg.Server())
	if err := inventorySession.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := inventorySession.Close(); err != nil {
			log.Warn().Err(err).Str("server", inventorySession.Name()).Msg("close mcp session")
		}
	}()

	qdrantCfg := configx.MustLoad[mcpx.QdrantConfig]("MCP_QDRANT")
	intelSession := mcpx.NewSession(qdrantCfg.Server())
	if err := intelSession.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := intelSession.Close(); err != nil {
			log.Warn().Err(err).Str("server", intelSession.Name()).Msg("close mcp session")
		}
	}()

	inventoryGateway, err := mcpx.NewGateway(inventorySession)
	if err != nil {
		return err
	}
	intelGateway, err := mcpx.NewGateway(intelSession)
	if err != nil {
		return err
	}

	models, err := crewx.NewRegistry(ctx, *llmCfg, inventorySession.Infos(), intelSession.Infos())
	if err != nil {
		return err
	}

	var feedback contractx.FeedbackStore
	if store := openFeedbackStore(ctx); store != nil {
		feedback = store
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("close feedback store")
			}
		}()
	}

	p, err := pipelinex.New(
		models,
		inventoryGateway,
		intelGateway,
		feedback,
		openReportArchive(),
		openNotifier(),
		pipelinex.Config{
			Trigger:        appCfg.Trigger,
			ThresholdWeeks: appCfg.ThresholdWeeks,
			FallbackItem:   appCfg.FallbackItem,
			FeedbackLimit:  appCfg.FeedbackLimit,
			AlertFloor:     appCfg.AlertFloor,
		},
	)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, appCfg.Trigger)
	if err != nil {
		return err
	}

	fmt.Println(report.FinalDecision())
	return nil
}

// openFeedbackStore is best-effort: the feedback loop is advisory, so a
// missing table or unreachable database downgrades to a run without it.
func openFeedbackStore(ctx context.Context) *feedbackx.PostgresStore {
	cfg, err := configx.Load[feedbackx.Config]("FEEDBACK")
	if err != nil {
		log.Warn().Err(err).Msg("feedback store misconfigured, running without the feedback loop")
		return nil
	}
	store, err := feedbackx.Open(ctx, *cfg)
	if err != nil {
		log.Warn().Err(err).Msg("feedback store unavailable, running without the feedback loop")
		return nil
	}
	return store
}

func openReportArchive() statex.Store {
	cfg, err := configx.Load[statex.UpstashRedisConfig]("REPORT_STORE")
	if err != nil {
		log.Info().Msg("report archive not configured, reports will not be persisted")
		return nil
	}
	store, err := statex.NewUpstashRedisStore(*cfg)
	if err != nil {
		log.Warn().Err(err).Msg("report archive unavailable, reports will not be persisted")
		return nil
	}
	return store
}

func openNotifier() contractx.Notifier {
	cfg, err := configx.Load[notifyx.Config]("ALERT")
	if err != nil || strings.TrimSpace(cfg.URL) == "" {
		log.Info().Msg("alert webhook not configured, alerts disabled")
		return nil
	}
	client, err := notifyx.NewClient(*cfg)
	if err != nil {
		log.Warn().Err(err).Msg("alert webhook invalid, alerts disabled")
		return nil
	}
	notifier, err := pipelinex.NewWebhookNotifier(client)
	if err != nil {
		return nil
	}
	return notifier
}
