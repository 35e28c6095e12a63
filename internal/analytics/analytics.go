// Package analytics is a fire-and-forget event tracker. A payload filter
// blocks any property whose key hints at journal or insight content; raw
// user text never leaves the process through this channel.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quillvault/quill/internal/store"
)

// Event names tracked by the journal experience.
const (
	EventPromptSelected         = "prompt_selected"
	EventWritingStarted         = "writing_started"
	EventWritingAbandoned       = "writing_abandoned"
	EventInsightRequested       = "insight_requested"
	EventModelDownloadStarted   = "model_download_started"
	EventModelDownloadCompleted = "model_download_completed"
	EventInsightCompleted       = "insight_completed"
	EventErrorOccurred          = "error_occurred"
	EventHistoryEntryLoaded     = "history_entry_loaded"
	EventHistoryEntrySaved      = "history_entry_saved"
	EventHistoryEntryDeleted    = "history_entry_deleted"
	EventNewEntryStarted        = "new_entry_started"
	EventHistoryCleared         = "history_cleared"
	EventHistoryImported        = "history_imported"
	EventHistoryExported        = "history_exported"
)

// sensitiveKeys blocks whole payloads: if any property key contains one of
// these fragments, the event is dropped rather than scrubbed, so a bug can
// never leak partial content.
var sensitiveKeys = []string{"journal", "insight_text", "theme_summary", "user_text"}

// Sink receives accepted events. Implementations must not block the caller
// for long; Track is called from interactive paths.
type Sink interface {
	Send(ctx context.Context, name string, props map[string]any)
}

// Tracker filters and fans out events to its sinks.
type Tracker struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewTracker(logger *slog.Logger, sinks ...Sink) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{sinks: sinks, logger: logger}
}

// Track sends an event to every sink unless its payload carries a sensitive
// key. Failures are logged and swallowed; analytics never affects the user
// path.
func (t *Tracker) Track(ctx context.Context, name string, props map[string]any) {
	if t == nil {
		return
	}
	if hasSensitiveKey(props) {
		t.logger.Warn("blocked analytics payload with sensitive key", slog.String("event", name))
		return
	}
	for _, sink := range t.sinks {
		sink.Send(ctx, name, props)
	}
}

func hasSensitiveKey(props map[string]any) bool {
	for key := range props {
		lower := strings.ToLower(key)
		for _, sensitive := range sensitiveKeys {
			if strings.Contains(lower, sensitive) {
				return true
			}
		}
	}
	return false
}

// HTTPSink posts events to a remote collector, plausible-style. Sends run in
// a goroutine and errors are logged, never returned.
type HTTPSink struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewHTTPSink(endpoint string, logger *slog.Logger) *HTTPSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}
}

func (s *HTTPSink) Send(ctx context.Context, name string, props map[string]any) {
	payload, err := json.Marshal(map[string]any{
		"name":  name,
		"props": props,
	})
	if err != nil {
		s.logger.Warn("encode analytics event", slog.String("error", err.Error()))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			s.logger.Debug("analytics send failed", slog.String("error", err.Error()))
			return
		}
		resp.Body.Close()
	}()
}

// StoreSink appends events to the local event log so usage is inspectable
// without any network at all.
type StoreSink struct {
	store  store.Store
	logger *slog.Logger
}

func NewStoreSink(s store.Store, logger *slog.Logger) *StoreSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreSink{store: s, logger: logger}
}

func (s *StoreSink) Send(_ context.Context, name string, props map[string]any) {
	err := s.store.AppendEvent(&store.Event{
		ID:        uuid.New().String(),
		Name:      name,
		Props:     props,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Debug("append analytics event", slog.String("error", err.Error()))
	}
}
