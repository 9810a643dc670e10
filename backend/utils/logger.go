package utils

import (
	"log"
	"os"
)

// LoggerConfig configures the application logger
type LoggerConfig struct {
	// Log format (text/json)
	Format string
	// Output stream (os.Stdout, a file, etc.)
	Output *os.File
}

// InitLogger builds the application logger
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[Go Academy] "

	if cfg.Format == "json" {
		return log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC)
	}
	return log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
}
