package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeRuntime scripts the neural backend for tests.
type fakeRuntime struct {
	loadErr      error
	loadCalls    int
	classifyOut  Classification
	classifyErr  error
	summarizeOut string
	summarizeErr error
	called       bool
}

func (f *fakeRuntime) Load(ctx context.Context, progress func(ProgressUpdate)) error {
	f.called = true
	f.loadCalls++
	if f.loadErr != nil {
		return f.loadErr
	}
	if progress != nil {
		progress(ProgressUpdate{Status: StatusDownloading, Percent: 50})
		progress(ProgressUpdate{Status: StatusReady, Percent: 100})
	}
	return nil
}

func (f *fakeRuntime) Classify(ctx context.Context, text string) (Classification, error) {
	f.called = true
	return f.classifyOut, f.classifyErr
}

func (f *fakeRuntime) Summarize(ctx context.Context, text string) (string, error) {
	f.called = true
	return f.summarizeOut, f.summarizeErr
}

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}
}

func firstChoice(n int) int { return 0 }

const englishEntry = "Today I finally shipped the project at work and I feel proud and grateful for my team."

func TestAnalyze_EmptyInput(t *testing.T) {
	rt := &fakeRuntime{}
	p := New(rt, WithRandInt(firstChoice))

	if _, err := p.Analyze(context.Background(), "   \n  ", nil); !errors.Is(err, ErrEmptyEntry) {
		t.Fatalf("expected ErrEmptyEntry, got %v", err)
	}
	if rt.called {
		t.Fatal("runtime touched for empty input")
	}
}

func TestAnalyze_TooShort(t *testing.T) {
	rt := &fakeRuntime{}
	p := New(rt, WithRandInt(firstChoice))

	// 19 characters after trimming.
	if _, err := p.Analyze(context.Background(), "nineteen chars here", nil); !errors.Is(err, ErrEntryTooShort) {
		t.Fatalf("expected ErrEntryTooShort, got %v", err)
	}
	if rt.called {
		t.Fatal("runtime touched for too-short input")
	}
}

func TestAnalyze_CJKRoutesToFallback(t *testing.T) {
	rt := &fakeRuntime{}
	p := New(rt, WithRandInt(firstChoice))

	text := "今天工作压力很大，加班到很晚，感觉非常疲惫和焦虑。"
	bundle, err := p.Analyze(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if rt.called {
		t.Fatal("neural path attempted for CJK-dominant text")
	}
	if !strings.Contains(bundle.Theme.Text, noticeLanguage["en"]) {
		t.Fatalf("language notice missing from theme text: %q", bundle.Theme.Text)
	}
	if bundle.Emotion.Tone == "" || bundle.Reflection.Question == "" {
		t.Fatalf("incomplete bundle: %+v", bundle)
	}
}

func TestAnalyze_PrimaryPath(t *testing.T) {
	rt := &fakeRuntime{
		classifyOut:  Classification{Label: "POSITIVE", Score: 0.95},
		summarizeOut: "  feeling grateful about   a successful launch ",
	}
	p := New(rt, WithRandInt(firstChoice), WithRetryPolicy(fastRetry()))

	var statuses []ModelStatus
	var lastPercent int
	cb := &Callbacks{
		OnModelStatus: func(s ModelStatus) { statuses = append(statuses, s) },
		OnProgress:    func(pct int) { lastPercent = pct },
	}

	bundle, err := p.Analyze(context.Background(), englishEntry, cb)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if bundle.Emotion.RawLabel != "POSITIVE" || bundle.Emotion.Tone != "joyful or excited" {
		t.Fatalf("unexpected emotion: %+v", bundle.Emotion)
	}
	if bundle.Theme.RawSummary != "feeling grateful about a successful launch" {
		t.Fatalf("summary not normalized: %q", bundle.Theme.RawSummary)
	}
	// "grateful" in the summary keys the gratitude bucket.
	if bundle.Reflection.Technique != "Positive psychology" {
		t.Fatalf("unexpected reflection: %+v", bundle.Reflection)
	}
	if strings.Contains(bundle.Theme.Text, "simplified analysis") {
		t.Fatal("primary path carried a fallback notice")
	}

	if lastPercent != 100 {
		t.Fatalf("final progress was %d, want 100", lastPercent)
	}
	if len(statuses) == 0 || statuses[len(statuses)-1] != StatusReady {
		t.Fatalf("missing ready transition: %v", statuses)
	}
}

func TestAnalyze_FallbackOnModelFailure(t *testing.T) {
	rt := &fakeRuntime{loadErr: errors.New("download failed")}
	p := New(rt, WithRandInt(firstChoice), WithRetryPolicy(fastRetry()))

	bundle, err := p.Analyze(context.Background(), englishEntry, nil)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}

	if rt.loadCalls != 3 {
		t.Fatalf("expected 3 load attempts, got %d", rt.loadCalls)
	}
	if !strings.Contains(bundle.Theme.Text, noticeModelsFailed["en"]) {
		t.Fatalf("models-failed notice missing: %q", bundle.Theme.Text)
	}
	if bundle.Emotion.Tone == "" || bundle.Theme.Text == "" || bundle.Reflection.Question == "" {
		t.Fatalf("fallback produced an incomplete bundle: %+v", bundle)
	}
}

func TestAnalyze_ClassifyFailureDegrades(t *testing.T) {
	rt := &fakeRuntime{
		classifyOut: Classification{},
		classifyErr: errors.New("inference crashed"),
	}
	p := New(rt, WithRandInt(firstChoice), WithRetryPolicy(fastRetry()))

	bundle, err := p.Analyze(context.Background(), englishEntry, nil)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if !strings.Contains(bundle.Theme.Text, noticeModelsFailed["en"]) {
		t.Fatal("classify failure should route to fallback with notice")
	}
}

func TestAnalyze_NilRuntime(t *testing.T) {
	p := New(nil, WithRandInt(firstChoice), WithRetryPolicy(fastRetry()))

	bundle, err := p.Analyze(context.Background(), englishEntry, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.Contains(bundle.Theme.Text, noticeModelsFailed["en"]) {
		t.Fatal("nil runtime should use the fallback with notice")
	}
}

func TestSummaryTail(t *testing.T) {
	long := strings.Repeat("a", SummaryTailChars+500)
	if got := summaryTail(long); len(got) != SummaryTailChars {
		t.Fatalf("tail length = %d, want %d", len(got), SummaryTailChars)
	}
	short := "short entry"
	if got := summaryTail(short); got != short {
		t.Fatalf("short text altered: %q", got)
	}
}
