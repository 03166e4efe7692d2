// Package database - Handles all interaction with the flat result files
package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ortelius/forkpoint-cves/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Store reads and writes the stage files on an afero filesystem
type Store struct {
	fs     afero.Fs
	logger *zap.Logger
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger(level string) *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		prodConfig.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := prodConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// NewStore returns a store rooted at the given filesystem
func NewStore(fs afero.Fs, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{fs: fs, logger: logger}
}

// WriteForkPoints persists the stage 1 output
func (s *Store) WriteForkPoints(path string, forkPoints []model.ForkPoint) error {
	if forkPoints == nil {
		forkPoints = []model.ForkPoint{}
	}
	if err := s.writeJSON(path, forkPoints); err != nil {
		return fmt.Errorf("failed to write fork points: %w", err)
	}
	s.logger.Sugar().Infof("Wrote %d fork points to %s", len(forkPoints), path)
	return nil
}

// ReadForkPoints loads the stage 1 output. A missing or malformed file is an
// error; stage 2 cannot do useful work without it. An empty list is valid.
func (s *Store) ReadForkPoints(path string) ([]model.ForkPoint, error) {
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fork points %s: %w", path, err)
	}

	var forkPoints []model.ForkPoint
	if err := json.Unmarshal(content, &forkPoints); err != nil {
		return nil, fmt.Errorf("failed to parse fork points %s: %w", path, err)
	}
	if forkPoints == nil {
		forkPoints = []model.ForkPoint{}
	}

	for i, fp := range forkPoints {
		if fp.Component == "" || fp.ForkPoint == "" {
			return nil, fmt.Errorf("failed to parse fork points %s: record %d is missing component or forkPoint", path, i)
		}
	}
	return forkPoints, nil
}

func (s *Store) writeJSON(path string, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return s.writeFile(path, b)
}

func (s *Store) writeFile(path string, b []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	return afero.WriteFile(s.fs, path, b, 0o644)
}
