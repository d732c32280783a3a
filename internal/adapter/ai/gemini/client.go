// Package gemini implements domain.Extractor on top of the Gemini API using
// schema-constrained JSON output.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/internx/internx/internal/adapter/ai"
	"github.com/internx/internx/internal/adapter/ai/tokencount"
	"github.com/internx/internx/internal/adapter/observability"
	"github.com/internx/internx/internal/config"
	"github.com/internx/internx/internal/domain"
	obsctx "github.com/internx/internx/internal/observability"
	"github.com/internx/internx/pkg/textx"
)

const (
	provider  = "gemini"
	operation = "extract_resume"
)

const systemInstruction = "You are an expert resume analyst for an internship allocation platform. " +
	"Read the resume and respond only with JSON matching the provided schema: " +
	"a concise professional summary, the list of concrete technical and professional skills, " +
	"and an integer market_readiness_score from 1 (not ready) to 100 (fully ready) for internship applications."

// resumeSchema is the response schema requested from the model.
var resumeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {
			Type:        genai.TypeString,
			Description: "Two to four sentence professional summary of the candidate.",
		},
		"skills_extracted": {
			Type:        genai.TypeArray,
			Description: "Distinct skills found in the resume.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"market_readiness_score": {
			Type:        genai.TypeInteger,
			Description: "Internship market readiness from 1 to 100.",
			Minimum:     float64Ptr(domain.MinReadinessScore),
			Maximum:     float64Ptr(domain.MaxReadinessScore),
		},
	},
	Required: []string{"summary", "skills_extracted", "market_readiness_score"},
}

// Client calls Gemini once per extraction. It performs no retries; callers
// decide based on the error kind.
type Client struct {
	cfg     config.Config
	api     *genai.Client
	counter *tokencount.Counter
}

// New builds a client. A missing API key is not an error here: ExtractResume
// reports domain.ErrConfiguration so the server can still start.
func New(ctx context.Context, cfg config.Config, httpClient *http.Client) (*Client, error) {
	c := &Client{cfg: cfg, counter: tokencount.DefaultCounter}
	if !cfg.GeminiConfigured() {
		slog.Warn("gemini api key missing, resume analysis disabled", slog.String("provider", provider))
		return c, nil
	}
	if httpClient == nil {
		httpClient = observability.NewHTTPClient(cfg.GeminiTimeout)
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.GeminiBaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiBaseURL}
	}
	api, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("op=gemini.New: %w: %w", domain.ErrConfiguration, err)
	}
	c.api = api
	return c, nil
}

// ExtractResume sends the resume to the model and validates the reply against
// the resume schema.
func (c *Client) ExtractResume(ctx context.Context, resumeText string) (domain.Extraction, error) {
	lg := obsctx.Op(ctx, "gemini.extract_resume", slog.String("provider", provider), slog.String("model", c.cfg.GeminiModel))
	if c.api == nil {
		return domain.Extraction{}, fmt.Errorf("op=gemini.extract: %w",
			domain.Errorf(domain.ErrConfiguration, "AI service credential is not configured"))
	}
	text, tokens, err := c.prepare(resumeText)
	if err != nil {
		return domain.Extraction{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.GeminiTimeout)
	defer cancel()
	ctx, span := otel.Tracer("ai.gemini").Start(ctx, "gemini.GenerateContent")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.model", c.cfg.GeminiModel),
		attribute.Int("ai.prompt_tokens_estimate", tokens),
	)

	start := time.Now()
	resp, err := c.api.Models.GenerateContent(ctx, c.cfg.GeminiModel, genai.Text(userPrompt(text)), generateConfig())
	took := time.Since(start)
	if err != nil {
		outcome := classifyTransportError(ctx, err)
		observability.ObserveAIRequest(provider, operation, outcome, took)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		lg.Error("ai provider call failed",
			slog.String("outcome", outcome),
			slog.Int("status", apiStatus(err)),
			slog.Duration("duration", took),
			slog.Any("error", err))
		return domain.Extraction{}, fmt.Errorf("op=gemini.extract: %w: %w", domain.ErrUpstreamUnavailable, err)
	}

	payload := responseText(resp)
	out, err := ai.ParseExtraction(payload)
	if err != nil {
		observability.ObserveAIRequest(provider, operation, "schema_invalid", took)
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema_invalid")
		lg.Warn("ai response violates schema",
			slog.Any("error", err),
			slog.Duration("duration", took))
		lg.Debug("ai response snippet", slog.String("body", textx.Snippet(payload, 512)))
		return domain.Extraction{}, fmt.Errorf("op=gemini.extract: %w", err)
	}

	observability.ObserveAIRequest(provider, operation, "ok", took)
	lg.Info("ai extraction completed",
		slog.Duration("duration", took),
		slog.Int("skills", len(out.SkillsExtracted)),
		slog.Int("market_readiness_score", out.MarketReadinessScore))
	return out, nil
}

// CheckResume applies the local input checks of ExtractResume without calling
// the model.
func (c *Client) CheckResume(resumeText string) error {
	_, _, err := c.prepare(resumeText)
	return err
}

// prepare sanitizes the resume and enforces the plain-text and token limits.
func (c *Client) prepare(resumeText string) (string, int, error) {
	text := textx.SanitizeText(resumeText)
	if text == "" {
		return "", 0, domain.NewFieldError("resumeText", "resume text must not be empty")
	}
	if err := ai.EnsurePlainText(text); err != nil {
		return "", 0, err
	}
	tokens, ok := c.counter.Fits(text, c.cfg.ResumeMaxTokens)
	if !ok {
		return "", tokens, domain.NewFieldError("resumeText",
			fmt.Sprintf("resume text is too long (%d tokens, max %d)", tokens, c.cfg.ResumeMaxTokens))
	}
	return text, tokens, nil
}

func userPrompt(text string) string {
	return "Analyze the following resume text:\n\n---\n" + text
}

func generateConfig() *genai.GenerateContentConfig {
	temperature := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    resumeSchema,
		Temperature:       &temperature,
	}
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

func classifyTransportError(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout"
	case apiStatus(err) == http.StatusTooManyRequests:
		return "rate_limited"
	case apiStatus(err) != 0:
		return "http_error"
	default:
		return "unavailable"
	}
}

func apiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func float64Ptr(v float64) *float64 { return &v }
