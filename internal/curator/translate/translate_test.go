package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
)

func TestDeepLClient_NoAPIKeyReturnsNil(t *testing.T) {
	c := NewDeepLClient("", "")
	out := c.TranslateBatch(context.Background(), []activities.EntryToTranslate{{EntryID: "e1", FullContent: "hi"}}, "ja", nil)
	assert.Nil(t, out)
}

func TestDeepLClient_TranslatesEachEntry(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		target := r.Form.Get("target_lang")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{{"text": "translated-" + target}},
		})
	}))
	defer srv.Close()

	c := NewDeepLClient("secret-key", srv.URL)
	heartbeats := 0
	out := c.TranslateBatch(context.Background(), []activities.EntryToTranslate{
		{EntryID: "e1", FullContent: "hello"},
		{EntryID: "e2", FullContent: "world"},
	}, "ja", func(string) { heartbeats++ })

	assert.Equal(t, "DeepL-Auth-Key secret-key", gotAuth)
	require.Len(t, out, 2)
	assert.Equal(t, "translated-JA", out[0].TranslatedContent)
	assert.Equal(t, 2, heartbeats)
}

func TestDeepLClient_SkipsFailedEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewDeepLClient("key", srv.URL)
	out := c.TranslateBatch(context.Background(), []activities.EntryToTranslate{{EntryID: "e1", FullContent: "x"}}, "ja", nil)
	assert.Empty(t, out)
}

func TestMSClient_MissingCredentialsReturnsNil(t *testing.T) {
	c := NewMSClient("", "")
	out := c.TranslateBatch(context.Background(), []activities.EntryToTranslate{{EntryID: "e1", FullContent: "hi"}}, "ja", nil)
	assert.Nil(t, out)

	c = NewMSClient("key", "")
	out = c.TranslateBatch(context.Background(), []activities.EntryToTranslate{{EntryID: "e1", FullContent: "hi"}}, "ja", nil)
	assert.Nil(t, out)
}

func TestMSClient_TranslatesBatchInOneRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "sub-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "eastus", r.Header.Get("Ocp-Apim-Subscription-Region"))

		var body []msTranslateItem
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body, 2)

		resp := make([]msTranslateResult, len(body))
		for i, item := range body {
			resp[i].Translations = []struct {
				Text string `json:"text"`
			}{{Text: "translated-" + item.Text}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewMSClient("sub-key", "eastus")
	c.baseURL = srv.URL

	out := c.TranslateBatch(context.Background(), []activities.EntryToTranslate{
		{EntryID: "e1", FullContent: "hello"},
		{EntryID: "e2", FullContent: "world"},
	}, "ja", nil)

	assert.Equal(t, 1, requests)
	require.Len(t, out, 2)
	assert.Equal(t, "translated-hello", out[0].TranslatedContent)
	assert.Equal(t, "translated-world", out[1].TranslatedContent)
}
