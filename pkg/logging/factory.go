package logging

import (
	"sync"
)

// DefaultLoggerFactory implements LoggerFactory using zap loggers
type DefaultLoggerFactory struct {
	loggers map[string]Logger
	options Options
	mu      sync.RWMutex
}

// NewLoggerFactory creates a new logger factory with production defaults
func NewLoggerFactory() LoggerFactory {
	return NewLoggerFactoryWithOptions(Options{Level: "info", Format: "json"})
}

// NewLoggerFactoryWithOptions creates a logger factory using the given zap options
func NewLoggerFactoryWithOptions(opts Options) LoggerFactory {
	return &DefaultLoggerFactory{
		loggers: make(map[string]Logger),
		options: opts,
	}
}

// CreateLogger creates a basic logger for the specified component
func (f *DefaultLoggerFactory) CreateLogger(component string) Logger {
	f.mu.RLock()
	if logger, exists := f.loggers[component]; exists {
		f.mu.RUnlock()
		return logger
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if logger, exists := f.loggers[component]; exists {
		return logger
	}

	logger := NewZapLoggerWithOptions(component, f.options)
	f.loggers[component] = logger
	return logger
}

// CreateRequestLogger creates a logger scoped to one HTTP request
func (f *DefaultLoggerFactory) CreateRequestLogger(requestID string) Logger {
	return NewRequestLogger(f.CreateLogger("http"), requestID)
}

// CreateViewLogger creates a logger for one of the rendered views
func (f *DefaultLoggerFactory) CreateViewLogger(view string) Logger {
	return NewViewLogger(f.CreateLogger(view), view)
}

// DatabaseLoggerFactory extends the default factory with database persistence
type DatabaseLoggerFactory struct {
	*DefaultLoggerFactory
	repository LogRepository
	minLevel   string
}

// NewDatabaseLoggerFactory creates a logger factory with database persistence.
// Only entries at or above minLevel are written to the repository.
func NewDatabaseLoggerFactory(repository LogRepository, opts Options, minLevel string) LoggerFactory {
	return &DatabaseLoggerFactory{
		DefaultLoggerFactory: &DefaultLoggerFactory{
			loggers: make(map[string]Logger),
			options: opts,
		},
		repository: repository,
		minLevel:   minLevel,
	}
}

// CreateLogger creates a database-backed logger for the specified component
func (f *DatabaseLoggerFactory) CreateLogger(component string) Logger {
	f.mu.Lock()
	defer f.mu.Unlock()

	if logger, exists := f.loggers[component]; exists {
		return logger
	}

	base := NewZapLoggerWithOptions(component, f.options)
	dbLogger := NewDatabaseLogger(base, component, f.repository, f.minLevel)
	f.loggers[component] = dbLogger
	return dbLogger
}

// CreateRequestLogger creates a database-backed logger scoped to one HTTP request
func (f *DatabaseLoggerFactory) CreateRequestLogger(requestID string) Logger {
	return NewRequestLogger(f.CreateLogger("http"), requestID)
}

// CreateViewLogger creates a database-backed logger for a rendered view
func (f *DatabaseLoggerFactory) CreateViewLogger(view string) Logger {
	return NewViewLogger(f.CreateLogger(view), view)
}

// GlobalLoggerFactory provides a singleton logger factory instance
var (
	globalFactory LoggerFactory
	globalMu      sync.RWMutex
)

// GetGlobalLoggerFactory returns the global logger factory instance
func GetGlobalLoggerFactory() LoggerFactory {
	globalMu.RLock()
	factory := globalFactory
	globalMu.RUnlock()
	if factory != nil {
		return factory
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalFactory == nil {
		globalFactory = NewLoggerFactory()
	}
	return globalFactory
}

// SetGlobalLoggerFactory sets the global logger factory (useful for dependency injection)
func SetGlobalLoggerFactory(factory LoggerFactory) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalFactory = factory
}
