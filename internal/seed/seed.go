// Package seed installs the default game settings document.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-game-config/configuration"
)

// DefaultName is the name of the bundled settings document.
const DefaultName = "Asteroid Adventure"

//go:embed defaults/asteroid_adventure.json
var defaults embed.FS

// Creator stores new configuration records.
type Creator interface {
	Create(ctx context.Context, candidate configuration.Record) (*configuration.Record, error)
}

// DefaultDocument returns the bundled settings JSON.
func DefaultDocument() (string, error) {
	raw, err := defaults.ReadFile("defaults/asteroid_adventure.json")
	if err != nil {
		return "", fmt.Errorf("read default settings: %w", err)
	}
	return string(raw), nil
}

// Run creates the default document unless a record with the same name
// already exists. It reports whether a record was created.
func Run(ctx context.Context, svc Creator, logger *zap.Logger) (bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := DefaultDocument()
	if err != nil {
		return false, err
	}

	rec, err := svc.Create(ctx, configuration.Record{Name: DefaultName, JSONConfig: doc})
	if errors.Is(err, configuration.ErrDuplicateName) {
		logger.Info("default configuration already present", zap.String("name", DefaultName))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed %q: %w", DefaultName, err)
	}

	logger.Info("default configuration created", zap.String("id", rec.ID), zap.String("name", rec.Name))
	return true, nil
}
