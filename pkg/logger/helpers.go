package logger

import "github.com/rs/zerolog"

// LogSyncRun logs the outcome of one orchestrator run
func LogSyncRun(mode, status string, recordsProcessed int, err error) {
	fields := map[string]interface{}{
		"mode":              mode,
		"status":            status,
		"records_processed": recordsProcessed,
	}

	logger := GetLogger().WithFields(fields)

	if err != nil {
		logger.WithError(err).Error("Sync run failed")
	} else {
		logger.Info("Sync run completed")
	}
}

// LogRowRejected logs a single rejected report row; the run continues
func LogRowRejected(page int, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"page":   page,
		"reason": reason,
	}).Warn("Report row rejected")
}

// LogPageExtracted logs progress through the paginated report
func LogPageExtracted(page, accepted, rejected int) {
	GetLogger().WithFields(map[string]interface{}{
		"page":     page,
		"accepted": accepted,
		"rejected": rejected,
	}).Info("Report page extracted")
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, config map[string]interface{}) {
	logger := GetLogger().WithField("component", component)

	if len(config) > 0 {
		logger = logger.WithFields(config)
	}

	logger.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(component string, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
