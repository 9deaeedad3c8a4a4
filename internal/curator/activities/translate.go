package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
)

// TranslateBatchInput/Output. Grounded on activities/ms_translate.py's
// ms_translate_entries (DeeplTranslateEntries follows the same shape
// against the DeepL provider).
type TranslateBatchInput struct {
	Entries        []EntryToTranslate `json:"entries"`
	TargetLanguage string             `json:"targetLanguage"`
}

type TranslateBatchOutput struct {
	Translated []TranslatedEntry `json:"translated"`
}

// DeeplTranslateEntries translates a batch of entries via the DeepL
// provider, skipping entries with no content to translate.
func (a *Activities) DeeplTranslateEntries(ctx context.Context, in TranslateBatchInput) (TranslateBatchOutput, error) {
	return a.translateWith(ctx, a.DeeplTranslator, in)
}

// MsTranslateEntries translates a batch of entries via the Microsoft
// Translator provider, skipping entries with no content to translate.
func (a *Activities) MsTranslateEntries(ctx context.Context, in TranslateBatchInput) (TranslateBatchOutput, error) {
	return a.translateWith(ctx, a.MSTranslator, in)
}

func (a *Activities) translateWith(ctx context.Context, translator Translator, in TranslateBatchInput) (TranslateBatchOutput, error) {
	entries := make([]EntryToTranslate, 0, len(in.Entries))
	for _, e := range in.Entries {
		if e.FullContent == "" {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return TranslateBatchOutput{}, nil
	}

	total := len(entries)
	translated := translator.TranslateBatch(ctx, entries, in.TargetLanguage, func(msg string) {
		activity.RecordHeartbeat(ctx, msg)
	})

	activity.GetLogger(ctx).Info("translated entries", "requested", total, "translated", len(translated), "targetLanguage", in.TargetLanguage)
	return TranslateBatchOutput{Translated: translated}, nil
}
