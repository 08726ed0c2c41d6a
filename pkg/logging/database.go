package logging

// DatabaseLogger wraps a base logger with database persistence
type DatabaseLogger struct {
	base       Logger
	component  string
	repository LogRepository
	minLevel   int
	context    map[string]interface{}
}

var levelRank = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// NewDatabaseLogger creates a new database-backed logger
func NewDatabaseLogger(base Logger, component string, repository LogRepository, minLevel string) Logger {
	return &DatabaseLogger{
		base:       base,
		component:  component,
		repository: repository,
		minLevel:   rankOf(minLevel),
		context:    make(map[string]interface{}),
	}
}

func rankOf(level string) int {
	switch level {
	case "debug", "DEBUG":
		return levelRank["DEBUG"]
	case "info", "INFO":
		return levelRank["INFO"]
	case "error", "ERROR":
		return levelRank["ERROR"]
	default:
		return levelRank["WARN"]
	}
}

// Info logs informational messages and persists to database
func (d *DatabaseLogger) Info(msg string, fields map[string]interface{}) {
	d.base.Info(msg, fields)
	d.persistLog("INFO", msg, nil, fields)
}

// Error logs error messages and persists to database
func (d *DatabaseLogger) Error(msg string, err error, fields map[string]interface{}) {
	d.base.Error(msg, err, fields)
	d.persistLog("ERROR", msg, err, fields)
}

// Warn logs warning messages and persists to database
func (d *DatabaseLogger) Warn(msg string, fields map[string]interface{}) {
	d.base.Warn(msg, fields)
	d.persistLog("WARN", msg, nil, fields)
}

// Debug logs debug messages and persists to database
func (d *DatabaseLogger) Debug(msg string, fields map[string]interface{}) {
	d.base.Debug(msg, fields)
	d.persistLog("DEBUG", msg, nil, fields)
}

// WithPipeline creates a new logger with pipeline context
func (d *DatabaseLogger) WithPipeline(pipeline string) Logger {
	ctx := d.copyContext()
	ctx["pipeline"] = pipeline
	return &DatabaseLogger{
		base:       d.base.WithPipeline(pipeline),
		component:  d.component,
		repository: d.repository,
		minLevel:   d.minLevel,
		context:    ctx,
	}
}

// WithContext creates a new logger with additional context fields
func (d *DatabaseLogger) WithContext(extra map[string]interface{}) Logger {
	ctx := d.copyContext()
	for k, v := range extra {
		ctx[k] = v
	}
	return &DatabaseLogger{
		base:       d.base.WithContext(extra),
		component:  d.component,
		repository: d.repository,
		minLevel:   d.minLevel,
		context:    ctx,
	}
}

func (d *DatabaseLogger) copyContext() map[string]interface{} {
	ctx := make(map[string]interface{}, len(d.context))
	for k, v := range d.context {
		ctx[k] = v
	}
	return ctx
}

// persistLog saves the log entry to the database
func (d *DatabaseLogger) persistLog(level, message string, err error, fields map[string]interface{}) {
	if d.repository == nil || levelRank[level] < d.minLevel {
		return
	}

	all := d.copyContext()
	for k, v := range fields {
		all[k] = v
	}

	entry := LogEntry{
		Component: d.component,
		Level:     level,
		Message:   message,
		Fields:    all,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if requestID, ok := all["request_id"].(string); ok {
		entry.RequestID = requestID
	}
	if path, ok := all["path"].(string); ok {
		entry.Path = path
	}

	// Save asynchronously so slow writes never hold up a response
	go func() {
		if saveErr := d.repository.SaveLog(entry); saveErr != nil {
			// Report through the base logger only, persisting this would recurse
			d.base.Error("Failed to persist log to database", saveErr, map[string]interface{}{
				"original_message": message,
				"original_level":   level,
			})
		}
	}()
}
