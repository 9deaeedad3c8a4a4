// Command worker runs the curator's Temporal worker process: every
// workflow and activity in internal/curator/workflows and
// internal/curator/activities, registered against one task queue.
//
// Grounded on example/cmd/assistant/main.go's bootstrap shape (clue
// logging setup, signal-driven graceful shutdown via an error channel)
// with the Goa-generated multi-transport service wiring dropped --
// nothing here serves HTTP/gRPC, so only the logging and shutdown
// skeleton carries over.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/worker"
	"goa.design/clue/log"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/config"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/durable"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/embedding"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm/anthropic"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm/bedrock"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm/openai"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/notify"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/restapi"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/ssebridge"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/translate"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/workflows"
)

func main() {
	debug := os.Getenv("DEBUG") != ""
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if debug {
		ctx = log.Context(ctx, log.WithDebug())
	}

	if err := run(ctx); err != nil {
		log.Error(ctx, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}

	api := restapi.New(cfg.APIBaseURL, cfg.InternalAPIToken)

	llmClient, err := newLLMClient(cfg)
	if err != nil {
		return fmt.Errorf("configure llm client: %w", err)
	}

	var embedder activities.Embedder
	if cfg.EmbeddingModel != "" && cfg.OpenAIAPIKey != "" {
		embedder, err = embedding.NewFromAPIKey(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
		if err != nil {
			return fmt.Errorf("configure embedder: %w", err)
		}
	}

	deepl := translate.NewDeepLClient(cfg.DeeplAPIKey, cfg.DeeplBaseURL)
	ms := translate.NewMSClient(cfg.MSTranslatorSubscriptionKey, cfg.MSTranslatorRegion)

	acts := activities.New(api, llmClient, embedder, deepl, ms, cfg)

	notifier := notify.NewNotifier(api)
	if bridgeClient, err := ssebridge.NewFromURL(cfg.RedisURL, cfg.RedisPassword); err != nil {
		log.Print(ctx, log.KV{K: "msg", V: "ssebridge disabled"}, log.KV{K: "error", V: err.Error()})
	} else {
		notifier.WithBridge(ssebridge.NewPublisher(bridgeClient))
	}
	workflows.BindNotifier(notifier)

	temporalClient, err := durable.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect to temporal: %w", err)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient.Temporal, cfg.TemporalTaskQueue, worker.Options{})

	registerWorkflows(w)
	w.RegisterActivity(acts)

	errc := make(chan error, 1)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("%s", <-c)
	}()
	go func() {
		errc <- w.Run(worker.InterruptCh())
	}()

	log.Print(ctx, log.KV{K: "taskQueue", V: cfg.TemporalTaskQueue}, log.KV{K: "msg", V: "worker started"})
	return <-errc
}

func registerWorkflows(w worker.Worker) {
	w.RegisterWorkflow(workflows.AllFeedsIngestionWorkflow)
	w.RegisterWorkflow(workflows.SingleFeedIngestionWorkflow)
	w.RegisterWorkflow(workflows.DomainFetchWorkflow)
	w.RegisterWorkflow(workflows.ScheduleFetchWorkflow)
	w.RegisterWorkflow(workflows.PreviewFetchWorkflow)
	w.RegisterWorkflow(workflows.ReprocessEntriesWorkflow)
	w.RegisterWorkflow(workflows.ContentDistillationWorkflow)
	w.RegisterWorkflow(workflows.TranslationWorkflow)
	w.RegisterWorkflow(workflows.EmbeddingBackfillWorkflow)
	w.RegisterWorkflow(workflows.EntriesCleanupWorkflow)
	w.RegisterWorkflow(workflows.ContextCollectionWorkflow)
	w.RegisterWorkflow(workflows.FetchEntryLinksWorkflow)
	w.RegisterWorkflow(workflows.GlobalGraphUpdateWorkflow)
	w.RegisterWorkflow(workflows.GraphRebuildWorkflow)
	w.RegisterWorkflow(workflows.ExtractEntryContextWorkflow)
	w.RegisterWorkflow(workflows.DeleteEnrichmentWorkflow)
	w.RegisterWorkflow(workflows.SearchReindexWorkflow)
	w.RegisterWorkflow(workflows.SearchPruneWorkflow)
	w.RegisterWorkflow(workflows.UpdateEntryIndexWorkflow)
	w.RegisterWorkflow(workflows.EvaluationWorkflow)
	w.RegisterWorkflow(workflows.SummarizationEvaluationWorkflow)
}

// newLLMClient picks a provider by which credentials are configured,
// preferring Anthropic, then Bedrock, then OpenAI -- the same precedence
// research/dialogue need isn't specified by the original (it only ever
// configures ChatOpenAI), so this follows the pack's general pattern of
// trying the most capable configured provider first.
func newLLMClient(cfg config.Config) (llm.Client, error) {
	model := cfg.ResearchModel
	switch {
	case cfg.AnthropicAPIKey != "":
		return anthropic.NewFromAPIKey(cfg.AnthropicAPIKey, model)
	case cfg.AWSRegion != "":
		return bedrock.NewFromRegion(cfg.AWSRegion, model)
	default:
		return openai.NewFromAPIKey(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, model)
	}
}
