package application

import (
	"context"
	"time"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// ActivityRecorder writes the audit trail of authentication attempts.
// Store failures are reported and swallowed so they never change a response.
// Writes outlive caller cancellation but are bounded by the stage timeout.
type ActivityRecorder struct {
	repo     ports.ActivityLogRepository
	reporter ports.ErrorReporter
	logger   zerolog.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewActivityRecorder creates a new activity recorder
func NewActivityRecorder(
	repo ports.ActivityLogRepository,
	reporter ports.ErrorReporter,
	logger zerolog.Logger,
	stageTimeout time.Duration,
) *ActivityRecorder {
	if stageTimeout <= 0 {
		stageTimeout = defaultStageTimeout
	}
	return &ActivityRecorder{
		repo:     repo,
		reporter: reporter,
		logger:   logger,
		timeout:  stageTimeout,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *ActivityRecorder) write(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
}

// Open creates an info-level, unsuccessful "auth" entry and returns its ID.
// An empty ID means the store rejected the entry; later calls become no-ops.
func (r *ActivityRecorder) Open(ctx context.Context, meta domain.AttemptMeta) string {
	now := r.now()
	entry := &domain.ActivityLogEntry{
		Level:             domain.LogLevelInfo,
		Success:           false,
		Action:            domain.ActionAuth,
		Start:             now,
		End:               now,
		Timestamp:         now,
		ConnectionID:      meta.ConnectionID,
		ProviderConfigKey: meta.ProviderConfigKey,
		EnvironmentID:     meta.EnvironmentID,
	}

	writeCtx, cancel := r.write(ctx)
	defer cancel()

	logID, err := r.repo.Create(writeCtx, entry)
	if err != nil {
		r.surface(ctx, err, "create", meta.EnvironmentID)
		return ""
	}
	return logID
}

// Append adds a message to the entry
func (r *ActivityRecorder) Append(ctx context.Context, logID string, level domain.LogLevel, content string) {
	if logID == "" {
		return
	}
	message := domain.ActivityLogMessage{
		Level:     level,
		Content:   content,
		Timestamp: r.now(),
	}
	writeCtx, cancel := r.write(ctx)
	defer cancel()
	if err := r.repo.AppendMessage(writeCtx, logID, message); err != nil {
		r.surface(ctx, err, "append", logID)
	}
}

// SetProvider records which provider the attempt resolved to
func (r *ActivityRecorder) SetProvider(ctx context.Context, logID string, provider string) {
	if logID == "" {
		return
	}
	writeCtx, cancel := r.write(ctx)
	defer cancel()
	if err := r.repo.UpdateProvider(writeCtx, logID, provider); err != nil {
		r.surface(ctx, err, "update_provider", logID)
	}
}

// Finalize sets the terminal state of the entry. Callers call it once per entry.
func (r *ActivityRecorder) Finalize(ctx context.Context, logID string, success bool) {
	if logID == "" {
		return
	}
	writeCtx, cancel := r.write(ctx)
	defer cancel()
	if err := r.repo.UpdateSuccess(writeCtx, logID, success); err != nil {
		r.surface(ctx, err, "finalize", logID)
	}
}

func (r *ActivityRecorder) surface(ctx context.Context, err error, op string, ref string) {
	r.logger.Error().
		Err(err).
		Str("operation", op).
		Str("ref", ref).
		Msg("Activity log write failed")
	if r.reporter != nil {
		r.reporter.Report(ctx, err, domain.GetAccountIDFromContext(ctx), map[string]any{
			"component": "activity_log",
			"operation": op,
			"ref":       ref,
		})
	}
}
