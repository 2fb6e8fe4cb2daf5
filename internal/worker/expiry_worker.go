package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/codeladder/exam-backend/internal/repository"
)

// ExpiryWorker sweeps open attempts whose time limit passed without any
// connection alive to close them. Per-connection timers handle the common
// path; the sweep is the backstop for abandoned attempts.
type ExpiryWorker struct {
	attempts *repository.ExamAttemptRepository
	interval time.Duration
	log      zerolog.Logger
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(attempts *repository.ExamAttemptRepository, interval time.Duration, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		attempts: attempts,
		interval: interval,
		log:      log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	closed, err := w.attempts.CloseExpired(ctx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("expiry sweep failed")
		return
	}
	if closed > 0 {
		w.log.Info().Int64("closed", closed).Msg("expired attempts closed")
	}
}
