// Package analyze implements the Analyzer collaborator. It always runs the
// local sniff and extract step and, when a chat model is configured, asks
// the model for a better title and summary.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gaurav-prasanna/reportpipe/config"
	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/chunk"
	"github.com/gaurav-prasanna/reportpipe/core/extract"
	"github.com/gaurav-prasanna/reportpipe/core/normalize"
	"github.com/gaurav-prasanna/reportpipe/core/sniff"
	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultPromptWords = 800
	maxRetries         = 2
)

const systemPrompt = "You are a JSON generator. Output only a JSON object, no markdown."

const promptTemplate = `Below is a document fetched from %s.
A rule-based extractor titled it %q and summarized it as %q.
Write a concise report title (at most 12 words) and a one-paragraph executive summary (at most 80 words).
Return exactly this JSON shape:
{"title": "...", "summary": "..."}

Document:
%s`

// ChatModel is the part of an eino chat model the analyzer uses.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Analyzer turns raw payloads into ExtractedData.
type Analyzer struct {
	model      ChatModel
	modelName  string
	limiter    *rate.Limiter
	normalizer core.Normalizer
	chunker    *chunk.Chunker
	backoff    time.Duration
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithModel enables enrichment through m. limiter may be nil.
func WithModel(m ChatModel, name string, limiter *rate.Limiter) Option {
	return func(a *Analyzer) {
		a.model = m
		a.modelName = name
		a.limiter = limiter
	}
}

// WithPromptWords caps the document part of the prompt.
func WithPromptWords(n int) Option {
	return func(a *Analyzer) {
		a.chunker = chunk.New(n)
	}
}

// withNormalizer replaces the HTML to Markdown step.
func withNormalizer(n core.Normalizer) Option {
	return func(a *Analyzer) {
		a.normalizer = n
	}
}

// New creates an Analyzer. Without WithModel it only extracts locally.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		normalizer: normalize.New(""),
		chunker:    chunk.New(defaultPromptWords),
		backoff:    2 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewChatModel builds the OpenAI-compatible eino chat model from config.
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (ChatModel, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing chat model: %w", err)
	}
	return cm, nil
}

// NewLimiter spreads rpm requests per minute with a burst of qps.
func NewLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	limit := rate.Limit(float64(cfg.RPM) / 60.0)
	burst := max(cfg.QPS, 1)
	return rate.NewLimiter(limit, burst)
}

// AnalyzeAndStructure implements core.Analyzer. Enrichment failures are
// logged and the local extraction is returned unchanged.
func (a *Analyzer) AnalyzeAndStructure(ctx context.Context, raw string, sourceURL string) (core.ExtractedData, error) {
	data := extract.Extract(raw, sourceURL)
	if a.model == nil {
		return data, nil
	}

	enriched, err := a.enrich(ctx, raw, data)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"url":   sourceURL,
			"model": a.modelName,
		}).Warnf("enrichment failed, keeping local extraction: %v", err)
		return data, nil
	}
	return enriched, nil
}

type enrichment struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// enrich replaces title and summary on a copy of data. Points, sections and
// data type are never touched.
func (a *Analyzer) enrich(ctx context.Context, raw string, data core.ExtractedData) (core.ExtractedData, error) {
	body, truncated := a.chunker.Head(a.promptBody(raw, data.SourceURL))
	if truncated {
		body += " ..."
	}
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: fmt.Sprintf(promptTemplate, data.SourceURL, data.Title, data.Summary, body)},
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return core.ExtractedData{}, err
			}
		}

		resp, err := a.model.Generate(ctx, messages)
		if err != nil {
			if isRateLimited(err) && i < maxRetries {
				lastErr = err
				timer := time.NewTimer(a.backoff * time.Duration(1<<i))
				select {
				case <-ctx.Done():
					timer.Stop()
					return core.ExtractedData{}, ctx.Err()
				case <-timer.C:
				}
				continue
			}
			return core.ExtractedData{}, fmt.Errorf("generating enrichment: %w", err)
		}
		if resp == nil {
			return core.ExtractedData{}, fmt.Errorf("model returned no message")
		}

		var e enrichment
		if err := json.Unmarshal([]byte(stripFences(resp.Content)), &e); err != nil {
			lastErr = fmt.Errorf("decoding enrichment: %w", err)
			continue
		}

		out := data.WithMetadata("enrichedBy", a.modelName)
		if t := strings.TrimSpace(e.Title); t != "" {
			out.Title = t
		}
		if s := strings.TrimSpace(e.Summary); s != "" {
			out.Summary = s
		}
		return out, nil
	}
	return core.ExtractedData{}, lastErr
}

// promptBody is the Markdown of the main content for HTML and the raw text
// otherwise.
func (a *Analyzer) promptBody(raw, sourceURL string) string {
	if sniff.Sniff(raw) != sniff.HTML {
		return raw
	}
	fragment, err := MainContent(raw, sourceURL)
	if err != nil {
		return raw
	}
	md, err := a.normalizer.Normalize(fragment)
	if err != nil {
		return raw
	}
	return md
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
