package api

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/podexhq/podex/internal/debounce"
)

const (
	// SyncDebounce batches a burst of layout tweaks into one PATCH.
	SyncDebounce = 500 * time.Millisecond

	// flushTimeout bounds the request issued by a flush.
	flushTimeout = 15 * time.Second
)

// Syncer pushes the preference subset to the backend, debounced so a drag
// of the sidebar divider becomes a single request. Failures never reach the
// caller: auth and availability problems are expected off-line states and
// log at warn, anything else at error.
type Syncer struct {
	client *Client
	source func() UIPreferences
	deb    *debounce.Debouncer
	logger *zap.Logger
}

// NewSyncer wires a client to a preference source. The source is called at
// flush time, not schedule time, so the freshest snapshot wins.
func NewSyncer(client *Client, source func() UIPreferences, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		client: client,
		source: source,
		deb:    debounce.New(SyncDebounce),
		logger: logger,
	}
}

// Request schedules a flush, replacing any pending one.
func (s *Syncer) Request() {
	s.deb.Schedule(s.flush)
}

// Flush pushes immediately, normally on shutdown.
func (s *Syncer) Flush() {
	s.deb.Cancel()
	s.flush()
}

// Close drops any pending flush.
func (s *Syncer) Close() {
	s.deb.Cancel()
}

func (s *Syncer) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	err := s.client.UpdateUIPreferences(ctx, s.source())
	switch {
	case err == nil:
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrServiceUnavailable):
		s.logger.Warn("preference sync skipped", zap.Error(err))
	default:
		s.logger.Error("preference sync failed", zap.Error(err))
	}
}
