// Package activities implements the curator's I/O unit library: one
// external side effect per activity, a single
// input/output struct pair, idempotent at the effect boundary, and
// returning structured {Success, Error} outputs rather than raising on
// expected domain failures.
//
// Grounded on worker/buun_curator/activities/*.py for semantics; every
// activity here is a method on *Activities so the worker process can
// inject its shared REST client, LLM clients, and translator clients
// once at startup.
package activities

import (
	"context"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/config"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/restapi"
)

// Translator is implemented by each translation provider (DeepL, MS).
// heartbeat is called between entries so the caller can forward it to
// activity.RecordHeartbeat.
type Translator interface {
	TranslateBatch(ctx context.Context, entries []EntryToTranslate, targetLanguage string, heartbeat func(msg string)) []TranslatedEntry
}

// Activities bundles the shared clients every activity method needs.
// One instance is constructed at worker startup and its methods
// registered with worker.RegisterActivity.
type Activities struct {
	API           *restapi.Client
	LLM           llm.Client
	Embedder      Embedder
	DeeplTranslator Translator
	MSTranslator    Translator
	Cfg           config.Config
}

// New builds an Activities bundle.
func New(api *restapi.Client, llmClient llm.Client, embedder Embedder, deepl, ms Translator, cfg config.Config) *Activities {
	return &Activities{API: api, LLM: llmClient, Embedder: embedder, DeeplTranslator: deepl, MSTranslator: ms, Cfg: cfg}
}

// Embedder computes deterministic embedding vectors from text, running on
// a process-wide single-worker admission gate shared across activities.
type Embedder interface {
	Embed(texts []string) ([][]float32, error)
}

// EntryToTranslate mirrors models/entry.py's EntryToTranslate.
type EntryToTranslate struct {
	EntryID     string
	Title       string
	URL         string
	FullContent string
	IsHTML      bool
}

// TranslatedEntry mirrors models/entry.py's TranslatedEntry.
type TranslatedEntry struct {
	EntryID            string
	TranslatedContent  string
}
