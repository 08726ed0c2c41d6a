package logging

import (
	"fmt"
)

// PipelineLogger wraps a base logger with pipeline-specific context
type PipelineLogger struct {
	base     Logger
	pipeline string
	context  map[string]interface{}
}

// NewPipelineLogger creates a new pipeline-specific logger
func NewPipelineLogger(base Logger, pipeline string) *PipelineLogger {
	return &PipelineLogger{
		base:     base,
		pipeline: pipeline,
		context:  make(map[string]interface{}),
	}
}

// Info logs informational messages with pipeline context
func (p *PipelineLogger) Info(msg string, fields map[string]interface{}) {
	p.base.Info(fmt.Sprintf("[%s] %s", p.pipeline, msg), p.enrichFields(fields))
}

// Error logs error messages with pipeline context
func (p *PipelineLogger) Error(msg string, err error, fields map[string]interface{}) {
	p.base.Error(fmt.Sprintf("[%s] %s", p.pipeline, msg), err, p.enrichFields(fields))
}

// Warn logs warning messages with pipeline context
func (p *PipelineLogger) Warn(msg string, fields map[string]interface{}) {
	p.base.Warn(fmt.Sprintf("[%s] %s", p.pipeline, msg), p.enrichFields(fields))
}

// Debug logs debug messages with pipeline context
func (p *PipelineLogger) Debug(msg string, fields map[string]interface{}) {
	p.base.Debug(fmt.Sprintf("[%s] %s", p.pipeline, msg), p.enrichFields(fields))
}

// WithPipeline creates a new logger with updated pipeline context
func (p *PipelineLogger) WithPipeline(pipeline string) Logger {
	return &PipelineLogger{
		base:     p.base,
		pipeline: pipeline,
		context:  p.copyContext(),
	}
}

// WithContext creates a new logger with additional context fields
func (p *PipelineLogger) WithContext(ctx map[string]interface{}) Logger {
	newContext := p.copyContext()
	for k, v := range ctx {
		newContext[k] = v
	}

	return &PipelineLogger{
		base:     p.base,
		pipeline: p.pipeline,
		context:  newContext,
	}
}

// enrichFields combines pipeline context with provided fields
func (p *PipelineLogger) enrichFields(fields map[string]interface{}) map[string]interface{} {
	enriched := make(map[string]interface{})

	for k, v := range p.context {
		enriched[k] = v
	}

	// Provided fields override context
	for k, v := range fields {
		enriched[k] = v
	}

	enriched["pipeline"] = p.pipeline

	return enriched
}

func (p *PipelineLogger) copyContext() map[string]interface{} {
	newContext := make(map[string]interface{})
	for k, v := range p.context {
		newContext[k] = v
	}
	return newContext
}

// RequestLogger is a pipeline logger bound to one HTTP request
type RequestLogger struct {
	*PipelineLogger
	requestID string
}

// NewRequestLogger creates a new request-scoped logger
func NewRequestLogger(base Logger, requestID string) *RequestLogger {
	pipelineLogger := NewPipelineLogger(base, "http")

	return &RequestLogger{
		PipelineLogger: pipelineLogger.WithContext(map[string]interface{}{
			"request_id": requestID,
		}).(*PipelineLogger),
		requestID: requestID,
	}
}

// WithRoute adds method and path context to the request logger
func (r *RequestLogger) WithRoute(method, path string) Logger {
	return r.WithContext(map[string]interface{}{
		"method": method,
		"path":   path,
	})
}

// RequestID returns the request identifier this logger is bound to
func (r *RequestLogger) RequestID() string {
	return r.requestID
}

// ViewLogger is a pipeline logger for one of the rendered views
type ViewLogger struct {
	*PipelineLogger
	view string
}

// NewViewLogger creates a new view logger
func NewViewLogger(base Logger, view string) *ViewLogger {
	pipelineLogger := NewPipelineLogger(base, "view")

	return &ViewLogger{
		PipelineLogger: pipelineLogger.WithContext(map[string]interface{}{
			"view": view,
		}).(*PipelineLogger),
		view: view,
	}
}

// WithRequest adds request id context to the view logger
func (v *ViewLogger) WithRequest(requestID string) Logger {
	return v.WithContext(map[string]interface{}{
		"request_id": requestID,
	})
}
