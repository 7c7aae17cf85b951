package logconfig

import (
	"fmt"

	myLogger "github.com/sirupsen/logrus"
)

// Options selects the log facility from configuration (LOG_LEVEL etc).
type Options struct {
	Level        string // trace, debug, info, warn, error
	JSON         bool   // machine readable output for production
	ReportCaller bool
}

// Setup configures the global logger.
// An empty level means info.
func Setup(opts Options) error {
	level := myLogger.InfoLevel
	if opts.Level != "" {
		parsed, err := myLogger.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("logconfig: %w", err)
		}
		level = parsed
	}

	myLogger.SetLevel(level)
	myLogger.SetReportCaller(opts.ReportCaller)
	if opts.JSON {
		myLogger.SetFormatter(&myLogger.JSONFormatter{})
	} else {
		myLogger.SetFormatter(textFormatter())
	}
	return nil
}

func textFormatter() *myLogger.TextFormatter {
	return &myLogger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	}
}

// This output format is used in the test (has terminal).
func ConfigDebugLogger() {
	_ = Setup(Options{Level: "debug", ReportCaller: true})
}

func ConfigInfoLogger() {
	_ = Setup(Options{Level: "info"})
}

// This output format is used in production.
func ConfigProductionLogger() {
	_ = Setup(Options{Level: "info", JSON: true})
}
