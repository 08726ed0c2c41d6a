package logging_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/latoulicious/holocron/pkg/logging"
)

// MockLogger implements the Logger interface for testing
type MockLogger struct {
	mu         sync.Mutex
	InfoCalls  []LogCall
	ErrorCalls []ErrorCall
	WarnCalls  []LogCall
	DebugCalls []LogCall
}

type LogCall struct {
	Message string
	Fields  map[string]interface{}
}

type ErrorCall struct {
	Message string
	Error   error
	Fields  map[string]interface{}
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, LogCall{Message: msg, Fields: fields})
}

func (m *MockLogger) Error(msg string, err error, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, ErrorCall{Message: msg, Error: err, Fields: fields})
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarnCalls = append(m.WarnCalls, LogCall{Message: msg, Fields: fields})
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DebugCalls = append(m.DebugCalls, LogCall{Message: msg, Fields: fields})
}

func (m *MockLogger) WithPipeline(pipeline string) logging.Logger {
	return m
}

func (m *MockLogger) WithContext(ctx map[string]interface{}) logging.Logger {
	return m
}

func (m *MockLogger) errorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ErrorCalls)
}

func TestPipelineLogger_BasicLogging(t *testing.T) {
	baseLogger := NewMockLogger()
	pipelineLogger := logging.NewPipelineLogger(baseLogger, "catalog")

	fields := map[string]interface{}{
		"page":  2,
		"count": 10,
	}

	pipelineLogger.Info("Fetched character page", fields)

	if len(baseLogger.InfoCalls) != 1 {
		t.Fatalf("Expected 1 info call, got %d", len(baseLogger.InfoCalls))
	}

	infoCall := baseLogger.InfoCalls[0]

	if !strings.Contains(infoCall.Message, "[catalog]") {
		t.Errorf("Expected message to contain pipeline prefix, got: %s", infoCall.Message)
	}
	if !strings.Contains(infoCall.Message, "Fetched character page") {
		t.Errorf("Expected message to contain original text, got: %s", infoCall.Message)
	}
	if infoCall.Fields["pipeline"] != "catalog" {
		t.Errorf("Expected pipeline field to be 'catalog', got: %v", infoCall.Fields["pipeline"])
	}
	if infoCall.Fields["page"] != 2 {
		t.Errorf("Expected original fields to be preserved")
	}
}

func TestPipelineLogger_ErrorLogging(t *testing.T) {
	baseLogger := NewMockLogger()
	pipelineLogger := logging.NewPipelineLogger(baseLogger, "detail")

	testError := errors.New("record fetch failed")
	pipelineLogger.Error("Failed to load character", testError, map[string]interface{}{
		"character_id": 4,
	})

	if len(baseLogger.ErrorCalls) != 1 {
		t.Fatalf("Expected 1 error call, got %d", len(baseLogger.ErrorCalls))
	}

	errorCall := baseLogger.ErrorCalls[0]
	if errorCall.Error != testError {
		t.Errorf("Expected error to be preserved")
	}
	if errorCall.Fields["character_id"] != 4 {
		t.Errorf("Expected character_id field to be preserved")
	}
}

func TestPipelineLogger_WithContextDoesNotMutateParent(t *testing.T) {
	baseLogger := NewMockLogger()
	parent := logging.NewPipelineLogger(baseLogger, "favorites")

	child := parent.WithContext(map[string]interface{}{"request_id": "req-1"})
	child.Warn("Corrupt favorites state", nil)
	parent.Warn("Parent warning", nil)

	if len(baseLogger.WarnCalls) != 2 {
		t.Fatalf("Expected 2 warn calls, got %d", len(baseLogger.WarnCalls))
	}
	if baseLogger.WarnCalls[0].Fields["request_id"] != "req-1" {
		t.Errorf("Expected child context to carry request_id")
	}
	if _, ok := baseLogger.WarnCalls[1].Fields["request_id"]; ok {
		t.Errorf("Parent logger must not inherit child context")
	}
}

func TestPipelineLogger_ProvidedFieldsOverrideContext(t *testing.T) {
	baseLogger := NewMockLogger()
	logger := logging.NewPipelineLogger(baseLogger, "http").WithContext(map[string]interface{}{
		"path": "/old",
	})

	logger.Info("request", map[string]interface{}{"path": "/new"})

	if got := baseLogger.InfoCalls[0].Fields["path"]; got != "/new" {
		t.Errorf("Expected provided field to win, got %v", got)
	}
}

func TestRequestLogger_CarriesRequestID(t *testing.T) {
	baseLogger := NewMockLogger()
	requestLogger := logging.NewRequestLogger(baseLogger, "abc-123")

	requestLogger.WithRoute("GET", "/character/1").Info("Rendered detail view", nil)

	if len(baseLogger.InfoCalls) != 1 {
		t.Fatalf("Expected 1 info call, got %d", len(baseLogger.InfoCalls))
	}
	fields := baseLogger.InfoCalls[0].Fields
	if fields["request_id"] != "abc-123" {
		t.Errorf("Expected request_id 'abc-123', got %v", fields["request_id"])
	}
	if fields["path"] != "/character/1" {
		t.Errorf("Expected path field, got %v", fields["path"])
	}
	if fields["pipeline"] != "http" {
		t.Errorf("Expected pipeline 'http', got %v", fields["pipeline"])
	}
	if requestLogger.RequestID() != "abc-123" {
		t.Errorf("Expected RequestID accessor to return the bound id")
	}
}

func TestViewLogger_CarriesViewName(t *testing.T) {
	baseLogger := NewMockLogger()
	viewLogger := logging.NewViewLogger(baseLogger, "catalog")

	viewLogger.WithRequest("req-9").Debug("Rendering cards", map[string]interface{}{"cards": 10})

	fields := baseLogger.DebugCalls[0].Fields
	if fields["view"] != "catalog" {
		t.Errorf("Expected view 'catalog', got %v", fields["view"])
	}
	if fields["request_id"] != "req-9" {
		t.Errorf("Expected request_id 'req-9', got %v", fields["request_id"])
	}
}
