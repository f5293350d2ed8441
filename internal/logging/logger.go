// Package logging provides the shared zap logger for docsmith.
// Each subsystem gets a named child logger so log lines can be
// filtered per category.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names used across the codebase.
const (
	CategoryAnalysis    = "analysis"
	CategoryConformance = "conformance"
	CategoryCorrection  = "correction"
	CategoryGeneration  = "generation"
	CategoryInsertion   = "insertion"
	CategoryPipeline    = "pipeline"
	CategoryStore       = "store"
	CategoryWatch       = "watch"
)

// New builds the root logger. With verbose enabled the level drops to
// debug and output switches to the console encoder for readability.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Named returns a category-scoped child of the given logger.
// A nil parent yields a no-op logger, which keeps call sites simple
// in tests that don't care about log output.
func Named(l *zap.Logger, category string) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.Named(category)
}
