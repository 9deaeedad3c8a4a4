// Command agent runs the curator's HTTP-facing process: the AG-UI/chat
// endpoints in internal/curator/aguisse, backed by the same LLM, search,
// and Temporal wiring the worker process uses.
//
// Grounded on example/cmd/assistant/main.go's bootstrap shape (clue
// logging setup, signal-driven graceful shutdown via an error channel),
// the same skeleton cmd/worker reuses, plus the original's own
// FastAPI-vs-net/http correspondence: one process, one listen address, no
// generated multi-transport layer.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goa.design/clue/log"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/aguisse"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/config"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/dialogue"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/durable"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/embedding"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm/anthropic"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm/bedrock"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm/openai"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/research"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/restapi"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/ssebridge"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/telemetry"
)

const shutdownTimeout = 10 * time.Second

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

	var embedder research.Embedder
	if cfg.EmbeddingModel != "" && cfg.OpenAIAPIKey != "" {
		embedder, err = embedding.NewFromAPIKey(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
		if err != nil {
			return fmt.Errorf("configure embedder: %w", err)
		}
	}

	temporalClient, err := durable.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect to temporal: %w", err)
	}
	defer temporalClient.Close()

	var evalTrigger dialogue.EvaluationTrigger
	if cfg.AIEvaluationEnabled {
		evalTrigger = dialogue.NewTemporalEvaluationTrigger(temporalClient)
	}

	dialogueStreamer := dialogue.New(llmClient, cfg.ResearchModel, evalTrigger, cfg.AIEvaluationEnabled)

	var researchRunner *research.Runner
	if cfg.ResearchModel != "" {
		searcher := research.NewAPISearcher(api, embedder)
		researchRunner = research.New(llmClient, searcher, cfg.ResearchModel, 3)
	}

	var bridgeSubscriber *ssebridge.Subscriber
	if bridgeClient, err := ssebridge.NewFromURL(cfg.RedisURL, cfg.RedisPassword); err != nil {
		log.Print(ctx, log.KV{K: "msg", V: "ssebridge disabled"}, log.KV{K: "error", V: err.Error()})
	} else {
		bridgeSubscriber = ssebridge.NewSubscriber(bridgeClient, ssebridge.SubscriberOptions{})
	}

	srv := &aguisse.Server{
		Dialogue: dialogueStreamer,
		Research: researchRunner,
		Entries:  dialogue.NewEntries(api),
		Log:      telemetry.NewClueLogger(),
		Bridge:   bridgeSubscriber,
	}

	mux := http.NewServeMux()
	srv.Routes(mux)

	httpServer := &http.Server{
		Addr:    cfg.AgentHTTPAddr,
		Handler: mux,
	}

	errc := make(chan error, 1)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("%s", <-c)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	log.Print(ctx, log.KV{K: "addr", V: cfg.AgentHTTPAddr}, log.KV{K: "msg", V: "agent started"})
	err = <-errc
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	return err
}

// newLLMClient picks a provider by which credentials are configured; see
// cmd/worker for the same precedence rationale.
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
