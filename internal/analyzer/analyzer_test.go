package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindjournal/internal/config"
)

const goodReply = `{"score":72,"summary":"Feeling steady.","suggestions":["walk","sleep","call a friend"],"keywords":["calm","tired","hopeful"],"appreciation":"Shabash!"}`

type captured struct {
	auth     string
	messages []message
	model    string
}

func hostedServer(t *testing.T, status int, completion string, seen *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if seen != nil {
			seen.auth = r.Header.Get("Authorization")
			seen.messages = body.Messages
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"completion": completion})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openAIServer(t *testing.T, content string, seen *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model    string    `json:"model"`
			Messages []message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		seen.auth = r.Header.Get("Authorization")
		seen.model = body.Model
		seen.messages = body.Messages
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, hostedURL, openAIURL, key string) *Client {
	t.Helper()
	c, err := NewClient(config.AnalysisConfig{
		HostedURL: hostedURL,
		OpenAIURL: openAIURL,
		Model:     "gpt-test",
		Timeout:   5 * time.Second,
	}, func() string { return key }, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestHostedBackendWithoutKey(t *testing.T) {
	var seen captured
	hosted := hostedServer(t, http.StatusOK, goodReply, &seen)
	c := newTestClient(t, hosted.URL, "http://127.0.0.1:1/unused", "")

	a, err := c.Analyze(context.Background(), "today was fine")
	require.NoError(t, err)
	require.Equal(t, 72, a.Score)
	require.Len(t, a.Suggestions, 3)
	require.Equal(t, "Shabash!", a.Appreciation)

	require.Empty(t, seen.auth)
	require.Len(t, seen.messages, 2)
	require.Equal(t, "system", seen.messages[0].Role)
	require.Equal(t, systemPrompt, seen.messages[0].Content)
	require.Equal(t, "today was fine", seen.messages[1].Content)
}

func TestOpenAIBackendWithKey(t *testing.T) {
	var seen captured
	oa := openAIServer(t, goodReply, &seen)
	c := newTestClient(t, "http://127.0.0.1:1/unused", oa.URL, "sk-abc")

	a, err := c.Analyze(context.Background(), "rough day")
	require.NoError(t, err)
	require.Equal(t, []string{"calm", "tired", "hopeful"}, a.Keywords)
	require.Equal(t, "Bearer sk-abc", seen.auth)
	require.Equal(t, "gpt-test", seen.model)
	require.Equal(t, "rough day", seen.messages[1].Content)
}

func TestSoftFailures(t *testing.T) {
	cases := map[string]struct {
		status int
		reply  string
	}{
		"non-2xx":            {http.StatusBadGateway, goodReply},
		"malformed json":     {http.StatusOK, "sure! here is your analysis: {"},
		"score out of range": {http.StatusOK, `{"score":140,"summary":"x","suggestions":["a","b","c"],"keywords":["a","b","c"]}`},
		"too few keywords":   {http.StatusOK, `{"score":40,"summary":"x","suggestions":["a","b","c"],"keywords":["a"]}`},
		"missing summary":    {http.StatusOK, `{"score":40,"suggestions":["a","b","c"],"keywords":["a","b","c"]}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			hosted := hostedServer(t, tc.status, tc.reply, nil)
			c := newTestClient(t, hosted.URL, "", "")
			a, err := c.Analyze(context.Background(), "text")
			require.Nil(t, a)
			require.ErrorIs(t, err, ErrAnalysisUnavailable)
		})
	}
}

func TestTransportFailureIsSoft(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, "", "")
	_, err := c.Analyze(context.Background(), "text")
	require.ErrorIs(t, err, ErrAnalysisUnavailable)
}

func TestEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, "", srv.URL, "sk")
	_, err := c.Analyze(context.Background(), "text")
	require.ErrorIs(t, err, ErrAnalysisUnavailable)
}
