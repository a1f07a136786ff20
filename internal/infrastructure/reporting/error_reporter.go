package reporting

import (
	"context"

	"archie-core-auth-gateway/internal/domain"

	goerrors "github.com/goliatone/go-errors"
	"github.com/rs/zerolog"
)

// LogReporter forwards failures to the structured log, where the aggregator
// collects them. Error text is redacted before it is written.
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter creates a new log based error reporter
func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger.With().Str("component", "error_reporter").Logger()}
}

// Report logs the error with its account and metadata
func (r *LogReporter) Report(ctx context.Context, err error, accountID string, metadata map[string]any) {
	if err == nil {
		return
	}

	event := r.logger.Error().
		Str("accountId", accountID).
		Str("error", domain.RedactError(err)).
		Fields(metadata)

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		event = event.
			Str("category", string(rich.Category)).
			Str("code", rich.TextCode)
	}

	event.Msg("Error reported")
}
