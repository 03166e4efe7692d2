// Package cli holds the setup shared by the stage entry points.
package cli

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/ortelius/forkpoint-cves/database"
	"github.com/ortelius/forkpoint-cves/internal/config"
	"github.com/ortelius/forkpoint-cves/internal/fetcher"
	"github.com/ortelius/forkpoint-cves/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Runtime bundles the configured dependencies of a stage run
type Runtime struct {
	Config  *config.Config
	Logger  *zap.Logger
	Fetcher *fetcher.Fetcher
	Store   *database.Store
}

// Bootstrap loads the configuration from fs and builds the logger, fetcher and store
func Bootstrap(fs afero.Fs) (*Runtime, error) {
	cfg, err := config.Load(fs)
	if err != nil {
		return nil, err
	}

	logger := database.InitLogger(cfg.Log.Level)
	f := fetcher.New(
		fetcher.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout}),
		fetcher.WithMaxRetries(cfg.Retry.MaxRetries),
		fetcher.WithBaseDelay(cfg.Retry.BaseDelay),
		fetcher.WithLogger(logger),
	)

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Fetcher: f,
		Store:   database.NewStore(fs, logger),
	}, nil
}

// Version formats build info the way the root commands print it
func Version(version, commit, date string) string {
	return fmt.Sprintf("%s (%s) %s", version, commit, date)
}

// PrintSummary echoes the remediation summary to w
func PrintSummary(w io.Writer, summary []model.RemediationSummary, records int, elapsed time.Duration) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "VULNERABILITIES: %d\n", records)
	fmt.Fprintln(w, "----------------------------------------")

	if len(summary) == 0 {
		fmt.Fprintln(w, "No remediated vulnerabilities found")
	}
	green := color.New(color.FgGreen)
	for _, s := range summary {
		green.Fprintf(w, "%s", s.Component)
		fmt.Fprintf(w, ": %d remediated vulnerabilities\n", s.Remediated)
	}
	fmt.Fprintf(w, "\nCompleted in %s\n", elapsed.Round(time.Millisecond))
}
