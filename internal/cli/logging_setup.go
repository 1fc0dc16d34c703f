package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/chronoline/internal/config"
	"github.com/rshade/chronoline/internal/logging"
)

// setupLogging builds the logger from the logging section and the --debug flag,
// and stores it with a trace ID in the command context.
func setupLogging(cmd *cobra.Command, lc config.LoggingConfig) logging.LogPathResult {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		lc = lc.Debug()
	}

	result := logging.NewLoggerWithPath(lc.ToLoggingConfig())
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle, if any.
func cleanupLogging(logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
