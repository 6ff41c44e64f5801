package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// setupLog configures the global logger. Logs go to stderr; a log_file
// config value redirects them to a file instead. The returned closer must
// run before exit.
func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	if path := viper.GetString("log_file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		log.SetOutput(f)
		log.SetReportTimestamp(true)
		log.SetTimeFormat(time.RFC3339)
		return f.Close, nil
	}

	return func() error { return nil }, nil
}
