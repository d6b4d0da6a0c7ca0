// Package logging provides structured JSON logging for crewview.
//
// [Logger] wraps log/slog with persistent attributes (run ID, agent,
// component) so every record emitted while processing a run can be
// correlated afterwards. Output goes either to stderr or to a size-rotated
// file managed by [RotatingWriter].
//
//	logger, err := logging.NewLogger(dir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	runLog := logger.WithRun(runID)
//	runLog.Info("snapshot applied", "new_lines", 4)
//
// Use [NopLogger] in tests and when logging is disabled.
package logging
