// Package classify enriches harvested records with per-item sentiment,
// themes and an operational insight, using an OpenAI-compatible chat
// completions endpoint.
//
// Classification never fails a batch: a post the model cannot judge is
// annotated as mixed and the run moves on.
package classify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/glane/content"
	"github.com/hazyhaar/glane/normalize"
)

// Mode selects the annotation depth.
type Mode string

const (
	// ModeBasic returns sentiment and themes only.
	ModeBasic Mode = "basic"
	// ModePro adds key comment snippets and an actionable insight.
	ModePro Mode = "pro"
)

// Annotation is the model's judgement of one record.
type Annotation struct {
	Sentiment   string   `json:"sentiment"`
	Themes      []string `json:"themes"`
	KeyComments []string `json:"key_comments"`
	Insight     string   `json:"insight"`
}

// Annotated pairs a record with its annotation.
type Annotated struct {
	content.Record
	Annotation Annotation `json:"annotation"`
}

// Config configures the classifier.
type Config struct {
	// Endpoint is the API base URL, e.g. "https://api.openai.com".
	Endpoint string `yaml:"endpoint"`
	// APIKey is sent as a bearer token. Usually from the environment.
	APIKey string `yaml:"-"`
	// Model to request. Default: "gpt-4o-mini".
	Model string `yaml:"model"`
	// Mode selects annotation depth. Default: ModeBasic.
	Mode Mode `yaml:"mode"`
	// Timeout bounds one API call. Default: 60s.
	Timeout time.Duration `yaml:"timeout"`
	// Gap is the pause between calls, to stay under rate limits.
	// Default: 300ms.
	Gap time.Duration `yaml:"gap"`
	// MaxPromptLen caps the text sent per post.
	// Default: normalize.DefaultMaxPromptLen.
	MaxPromptLen int `yaml:"max_prompt_len"`
}

func (c *Config) defaults() {
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	if c.Endpoint == "" {
		c.Endpoint = "https://api.openai.com"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Mode == "" {
		c.Mode = ModeBasic
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.Gap <= 0 {
		c.Gap = 300 * time.Millisecond
	}
	if c.MaxPromptLen <= 0 {
		c.MaxPromptLen = normalize.DefaultMaxPromptLen
	}
}

// Classifier annotates records over an OpenAI-compatible API.
type Classifier struct {
	cfg    Config
	client *chatClient
	logger *slog.Logger
}

// New creates a Classifier.
func New(cfg Config, logger *slog.Logger) *Classifier {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		cfg:    cfg,
		client: newChatClient(cfg),
		logger: logger,
	}
}

// Annotate classifies each record in turn, pacing calls by the
// configured gap. A failed call yields the fallback annotation for
// that record only.
func (c *Classifier) Annotate(ctx context.Context, records []content.Record) []Annotated {
	out := make([]Annotated, 0, len(records))
	for i, rec := range records {
		if i > 0 {
			select {
			case <-ctx.Done():
				c.logger.Warn("classify: cancelled, remaining records get fallback annotations")
				for _, rest := range records[i:] {
					out = append(out, Annotated{Record: rest, Annotation: fallbackAnnotation()})
				}
				return out
			case <-time.After(c.cfg.Gap):
			}
		}
		out = append(out, Annotated{Record: rec, Annotation: c.annotateOne(ctx, rec)})
	}
	return out
}

func (c *Classifier) annotateOne(ctx context.Context, rec content.Record) Annotation {
	text := normalize.Truncate(rec.Text, c.cfg.MaxPromptLen, normalize.DefaultCutMarkers)
	if strings.TrimSpace(text) == "" {
		return Annotation{
			Sentiment: "mixed",
			Themes:    []string{"no_text"},
			Insight:   "No caption or comments were available for this post.",
		}
	}

	ann, err := c.client.classify(ctx, text, c.cfg.Mode)
	if err != nil {
		c.logger.Warn("classify: model call failed", "item", rec.ID, "error", err)
		return fallbackAnnotation()
	}
	return sanitize(ann, c.cfg.Mode)
}

func fallbackAnnotation() Annotation {
	return Annotation{
		Sentiment: "mixed",
		Themes:    []string{"fallback"},
		Insight:   "Automatic classification failed; treat this post as mixed sentiment.",
	}
}

// sanitize normalizes whatever JSON shape the model returned into a
// well-formed annotation for the requested mode.
func sanitize(a Annotation, mode Mode) Annotation {
	a.Sentiment = strings.ToLower(strings.TrimSpace(a.Sentiment))
	switch a.Sentiment {
	case "positive", "mixed", "negative":
	default:
		a.Sentiment = "mixed"
	}
	if a.Themes == nil {
		a.Themes = []string{}
	}
	a.Insight = strings.TrimSpace(a.Insight)

	if mode == ModeBasic {
		a.KeyComments = nil
		a.Insight = "Upgrade to PRO for actionable insights."
		return a
	}
	if a.Insight == "" {
		a.Insight = "No specific insight was generated."
	}
	return a
}
