package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"

	"github.com/quillvault/quill/internal/journal"
	"github.com/quillvault/quill/internal/metrics"
)

var noticeLanguage = map[string]string{
	"en": "Note: Using simplified analysis because the current AI models are optimized for English.",
	"zh": "提示：当前 AI 模型主要针对英文优化，本条使用简化分析。",
}

var noticeModelsFailed = map[string]string{
	"en": "Note: Using simplified analysis because AI models could not be loaded.",
	"zh": "提示：AI 模型加载失败，本条使用简化分析。",
}

var collapseSpaceRe = regexp.MustCompile(`\s+`)

// Pipeline orchestrates one analysis: input validation, language routing,
// the neural primary path with retry, and the deterministic fallback. It
// never fails for "unable to analyze"; only invalid input produces an error.
type Pipeline struct {
	runtime Runtime
	retry   RetryPolicy
	locale  string
	randInt func(n int) int
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLocale sets the output language for insight copy ("en" or "zh").
func WithLocale(locale string) Option {
	return func(p *Pipeline) { p.locale = normalizeLocale(locale) }
}

// WithRetryPolicy overrides the model acquisition retry schedule.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *Pipeline) { p.retry = policy }
}

// WithRandInt injects the random source used for question selection. Tests
// pass a deterministic one.
func WithRandInt(fn func(n int) int) Option {
	return func(p *Pipeline) { p.randInt = fn }
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New builds a pipeline over a runtime. A nil runtime is valid: every
// analysis then takes the deterministic path.
func New(runtime Runtime, opts ...Option) *Pipeline {
	p := &Pipeline{
		runtime: runtime,
		retry:   DefaultRetryPolicy(),
		locale:  "en",
		randInt: rand.Intn,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze produces an insight bundle for text. CJK-dominated text routes
// straight to the rule-based analyzer; for everything else the neural path
// runs first and the rule-based analyzer is the safety net, with a notice
// appended to the theme text whenever the simplified route was used.
func (p *Pipeline) Analyze(ctx context.Context, text string, cb *Callbacks) (*journal.InsightBundle, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyEntry
	}
	if len([]rune(trimmed)) < MinEntryChars {
		return nil, ErrEntryTooShort
	}

	if IsMostlyCJK(text) {
		cb.status(StatusReady)
		cb.progress(100)

		bundle := AnalyzeFallback(text, p.locale, "zh", p.randInt)
		bundle.Theme.Text += "\n\n" + noticeLanguage[p.locale]
		metrics.AnalysesTotal.WithLabelValues("fallback").Inc()
		return &bundle, nil
	}

	bundle, err := p.analyzePrimary(ctx, text, cb)
	if err != nil {
		p.logger.Warn("primary analysis failed, using rule-based fallback",
			slog.String("error", err.Error()))

		cb.status(StatusReady)
		cb.progress(100)

		fallback := AnalyzeFallback(text, p.locale, "en", p.randInt)
		fallback.Theme.Text += "\n\n" + noticeModelsFailed[p.locale]
		metrics.AnalysesTotal.WithLabelValues("fallback").Inc()
		return &fallback, nil
	}

	cb.status(StatusReady)
	cb.progress(100)
	metrics.AnalysesTotal.WithLabelValues("primary").Inc()
	return bundle, nil
}

func (p *Pipeline) analyzePrimary(ctx context.Context, text string, cb *Callbacks) (*journal.InsightBundle, error) {
	if p.runtime == nil {
		return nil, fmt.Errorf("no inference runtime configured")
	}

	err := p.retry.Do(ctx, func(ctx context.Context) error {
		return p.runtime.Load(ctx, func(update ProgressUpdate) {
			if update.Status == StatusDownloading {
				cb.status(StatusDownloading)
			}
			percent := update.Percent
			if percent > 99 {
				// Hold the bar just under done until the bundle exists.
				percent = 99
			}
			cb.progress(percent)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}

	classification, err := p.runtime.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	emotion := mapEmotion(classification)

	summary, err := p.runtime.Summarize(ctx, summaryTail(text))
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	summary = strings.TrimSpace(collapseSpaceRe.ReplaceAllString(summary, " "))

	theme := journal.ThemeInsight{
		Emoji:      "🔍",
		Title:      "What you're processing",
		Text:       fmt.Sprintf("You seem to be working through %s.", summary),
		RawSummary: summary,
	}

	reflection := generateReflection(emotion, summary, p.randInt)

	return &journal.InsightBundle{
		Emotion:    emotion,
		Theme:      theme,
		Reflection: reflection,
	}, nil
}

// summaryTail bounds summarizer input to the last SummaryTailChars
// characters of a long entry.
func summaryTail(text string) string {
	runes := []rune(text)
	if len(runes) <= SummaryTailChars {
		return text
	}
	return string(runes[len(runes)-SummaryTailChars:])
}
