package analytics

import (
	"context"
	"testing"
)

type captureSink struct {
	events []string
}

func (c *captureSink) Send(_ context.Context, name string, _ map[string]any) {
	c.events = append(c.events, name)
}

func TestTracker_AllowsCleanPayloads(t *testing.T) {
	sink := &captureSink{}
	tracker := NewTracker(nil, sink)

	tracker.Track(context.Background(), EventInsightRequested, map[string]any{
		"word_count":    120,
		"prompt_type":   "daily_reflection",
		"is_first_time": false,
	})

	if len(sink.events) != 1 || sink.events[0] != EventInsightRequested {
		t.Fatalf("expected one delivered event, got %v", sink.events)
	}
}

func TestTracker_BlocksSensitiveKeys(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
	}{
		{"journal text", map[string]any{"journal_text": "private"}},
		{"insight text", map[string]any{"Insight_Text": "private"}},
		{"theme summary", map[string]any{"theme_summary": "private"}},
		{"user text nested key", map[string]any{"raw_user_text": "private"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &captureSink{}
			tracker := NewTracker(nil, sink)

			tracker.Track(context.Background(), EventErrorOccurred, tt.props)

			if len(sink.events) != 0 {
				t.Fatalf("sensitive payload reached the sink: %v", sink.events)
			}
		})
	}
}

func TestTracker_NilTrackerIsSafe(t *testing.T) {
	var tracker *Tracker
	tracker.Track(context.Background(), EventWritingStarted, nil)
}
