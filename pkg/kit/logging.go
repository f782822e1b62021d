package kit

import (
	"go.uber.org/zap"
)

// NewLogger builds a production JSON logger tagged with the service name.
// An unparsable level falls back to info.
func NewLogger(service, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]any{"service": service}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err == nil {
			cfg.Level = lvl
		}
	}

	return cfg.Build()
}
