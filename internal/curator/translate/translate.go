// Package translate implements activities.Translator against the DeepL
// and Microsoft (Azure Cognitive Services) translation APIs.
//
// Neither provider's original client module (services/deepl_translator.py,
// services/ms_translator.py) survived into the retrieved source tree, so
// these are built directly against each provider's public REST contract,
// following the same plain net/http style restapi.Client uses rather than
// a 3rd-party HTTP client package (none of the pack's repos reach for one).
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
)

const requestTimeout = 30 * time.Second

// DeepLClient translates via the DeepL API (v2 /translate endpoint).
type DeepLClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewDeepLClient builds a client. baseURL is normally
// "https://api.deepl.com" or "https://api-free.deepl.com" depending on
// plan; empty defaults to the paid endpoint.
func NewDeepLClient(apiKey, baseURL string) *DeepLClient {
	if baseURL == "" {
		baseURL = "https://api.deepl.com"
	}
	return &DeepLClient{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: requestTimeout}}
}

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// TranslateBatch translates each entry's FullContent independently (DeepL
// has no per-document batching for HTML bodies worth relying on), calling
// heartbeat between entries the same way ms_translate_entries does.
func (c *DeepLClient) TranslateBatch(ctx context.Context, entries []activities.EntryToTranslate, targetLanguage string, heartbeat func(msg string)) []activities.TranslatedEntry {
	if c.apiKey == "" {
		return nil
	}
	out := make([]activities.TranslatedEntry, 0, len(entries))
	for _, e := range entries {
		text, err := c.translateOne(ctx, e.FullContent, targetLanguage, e.IsHTML)
		if heartbeat != nil {
			heartbeat(fmt.Sprintf("deepl: translated %s", e.EntryID))
		}
		if err != nil {
			continue
		}
		out = append(out, activities.TranslatedEntry{EntryID: e.EntryID, TranslatedContent: text})
	}
	return out
}

func (c *DeepLClient) translateOne(ctx context.Context, text, targetLanguage string, isHTML bool) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", strings.ToUpper(targetLanguage))
	if isHTML {
		form.Set("tag_handling", "html")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepl: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("deepl: status %d", resp.StatusCode)
	}

	var decoded deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("deepl: decode response: %w", err)
	}
	if len(decoded.Translations) == 0 {
		return "", fmt.Errorf("deepl: no translation returned")
	}
	return decoded.Translations[0].Text, nil
}

// MSClient translates via Azure Cognitive Services Translator.
type MSClient struct {
	subscriptionKey string
	region          string
	baseURL         string
	http            *http.Client
}

// NewMSClient builds a client against the global Translator endpoint.
func NewMSClient(subscriptionKey, region string) *MSClient {
	return &MSClient{
		subscriptionKey: subscriptionKey,
		region:          region,
		baseURL:         "https://api.cognitive.microsofttranslator.com",
		http:            &http.Client{Timeout: requestTimeout},
	}
}

type msTranslateItem struct {
	Text string `json:"Text"`
}

type msTranslateResult struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// TranslateBatch sends all entries in one call (Azure Translator's array
// body supports up to 100 documents per request, well above the worker's
// per-activity batch size), matching ms_translate_entries' single
// request-per-batch shape.
func (c *MSClient) TranslateBatch(ctx context.Context, entries []activities.EntryToTranslate, targetLanguage string, heartbeat func(msg string)) []activities.TranslatedEntry {
	if c.subscriptionKey == "" || c.region == "" {
		return nil
	}

	body := make([]msTranslateItem, len(entries))
	for i, e := range entries {
		body[i] = msTranslateItem{Text: e.FullContent}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil
	}

	u := fmt.Sprintf("%s/translate?api-version=3.0&to=%s", c.baseURL, url.QueryEscape(targetLanguage))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey)
	req.Header.Set("Ocp-Apim-Subscription-Region", c.region)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil
	}

	var results []msTranslateResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil
	}

	out := make([]activities.TranslatedEntry, 0, len(entries))
	for i, r := range results {
		if i >= len(entries) || len(r.Translations) == 0 {
			continue
		}
		out = append(out, activities.TranslatedEntry{EntryID: entries[i].EntryID, TranslatedContent: r.Translations[0].Text})
		if heartbeat != nil {
			heartbeat(fmt.Sprintf("ms translate: translated %s", entries[i].EntryID))
		}
	}
	return out
}
