package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internx/internx/internal/config"
	"github.com/internx/internx/internal/domain"
	"github.com/internx/internx/internal/usecase"
)

var _ usecase.ResumeChecker = (*Client)(nil)

const sampleResume = "Jane Doe. Computer science student. Built a FastAPI service backed by MongoDB; strong Python."

type fakeGemini struct {
	srv      *httptest.Server
	hits     atomic.Int32
	lastBody atomic.Value
}

func newFakeGemini(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *fakeGemini {
	t.Helper()
	f := &fakeGemini{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		b, _ := io.ReadAll(r.Body)
		f.lastBody.Store(string(b))
		handler(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGemini) body() string {
	v, _ := f.lastBody.Load().(string)
	return v
}

func candidateJSON(t *testing.T, text string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
			"finishReason": "STOP",
		}},
	})
	require.NoError(t, err)
	return b
}

func replyWith(t *testing.T, text string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(candidateJSON(t, text))
	}
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		GeminiAPIKey:    "test-key",
		GeminiModel:     "gemini-2.5-flash",
		GeminiBaseURL:   baseURL + "/",
		GeminiTimeout:   2 * time.Second,
		ResumeMaxTokens: 8000,
	}
}

func newTestClient(t *testing.T, cfg config.Config) *Client {
	t.Helper()
	c, err := New(context.Background(), cfg, http.DefaultClient)
	require.NoError(t, err)
	return c
}

func TestExtractResume_Success(t *testing.T) {
	f := newFakeGemini(t, replyWith(t, `{"summary":"Backend-focused student.","skills_extracted":["Python","MongoDB","FastAPI"],"market_readiness_score":74}`))
	c := newTestClient(t, testConfig(f.srv.URL))

	got, err := c.ExtractResume(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, "Backend-focused student.", got.Summary)
	assert.Equal(t, []string{"Python", "MongoDB", "FastAPI"}, got.SkillsExtracted)
	assert.Equal(t, 74, got.MarketReadinessScore)

	body := f.body()
	assert.Contains(t, body, "systemInstruction")
	assert.Contains(t, body, "responseSchema")
	assert.Contains(t, body, "application/json")
	assert.Contains(t, body, "market_readiness_score")
	assert.Contains(t, body, "Analyze the following resume text")
}

func TestExtractResume_MissingKeyFailsBeforeNetwork(t *testing.T) {
	f := newFakeGemini(t, replyWith(t, `{}`))
	cfg := testConfig(f.srv.URL)
	cfg.GeminiAPIKey = ""
	c := newTestClient(t, cfg)

	_, err := c.ExtractResume(context.Background(), sampleResume)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestExtractResume_InputGuards(t *testing.T) {
	f := newFakeGemini(t, replyWith(t, `{}`))
	cfg := testConfig(f.srv.URL)
	cfg.ResumeMaxTokens = 5
	c := newTestClient(t, cfg)

	_, err := c.ExtractResume(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = c.ExtractResume(context.Background(), strings.Repeat("python mongodb fastapi ", 50))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	de, ok := domain.PublicError(err)
	require.True(t, ok)
	assert.Equal(t, "resumeText", de.Field)

	assert.Equal(t, int32(0), f.hits.Load())
}

func TestCheckResume_RejectsLocallyWithoutCallingModel(t *testing.T) {
	f := newFakeGemini(t, replyWith(t, `{}`))
	cfg := testConfig(f.srv.URL)
	cfg.ResumeMaxTokens = 50
	c := newTestClient(t, cfg)

	require.NoError(t, c.CheckResume(sampleResume))

	err := c.CheckResume(strings.Repeat("python mongodb fastapi ", 50))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = c.CheckResume("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.Equal(t, int32(0), f.hits.Load())
}

func TestExtractResume_UpstreamErrorStatus(t *testing.T) {
	f := newFakeGemini(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
	})
	c := newTestClient(t, testConfig(f.srv.URL))

	_, err := c.ExtractResume(context.Background(), sampleResume)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestExtractResume_Timeout(t *testing.T) {
	f := newFakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	cfg := testConfig(f.srv.URL)
	cfg.GeminiTimeout = 50 * time.Millisecond
	c := newTestClient(t, cfg)

	start := time.Now()
	_, err := c.ExtractResume(context.Background(), sampleResume)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExtractResume_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"prose":          "Sorry, I can only chat.",
		"missing_score":  `{"summary":"s","skills_extracted":["Go"]}`,
		"score_too_high": `{"summary":"s","skills_extracted":["Go"],"market_readiness_score":250}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFakeGemini(t, replyWith(t, payload))
			c := newTestClient(t, testConfig(f.srv.URL))

			_, err := c.ExtractResume(context.Background(), sampleResume)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
			assert.NotErrorIs(t, err, domain.ErrUpstreamUnavailable)
		})
	}
}

func TestExtractResume_NoCandidates(t *testing.T) {
	f := newFakeGemini(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	c := newTestClient(t, testConfig(f.srv.URL))

	_, err := c.ExtractResume(context.Background(), sampleResume)
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestClassifyTransportError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	assert.Equal(t, "timeout", classifyTransportError(ctx, context.DeadlineExceeded))
	assert.Equal(t, "unavailable", classifyTransportError(context.Background(), io.ErrUnexpectedEOF))
}
