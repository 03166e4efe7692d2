// Package main is stage 2 of the fork-point scanner: it queries the vulnerability
// database for every fork point and writes the merged results and remediation summary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ortelius/forkpoint-cves/internal/cli"
	"github.com/ortelius/forkpoint-cves/internal/clients"
	"github.com/ortelius/forkpoint-cves/internal/services"
	"github.com/ortelius/forkpoint-cves/internal/workers"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// populated by -ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "forkvulns",
	Short: "Report vulnerabilities affecting each component at its fork point",
	Long: `forkvulns reads the fork point file written by forkpoints, queries the
vulnerability database for every component and keeps the vulnerabilities whose
affected ranges include the fork point.

Results are written as a JSON array and a plain text remediation summary, which
is also echoed to stdout.

Configuration is read from the YAML file named by FORKVULN_CONFIG; built-in
defaults apply to every key it leaves out.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	rt, err := cli.Bootstrap(afero.NewOsFs())
	if err != nil {
		return err
	}
	defer rt.Logger.Sync() //nolint:errcheck

	forkPoints, err := rt.Store.ReadForkPoints(rt.Config.Files.ForkPoints)
	if err != nil {
		rt.Logger.Sugar().Fatalf("Cannot start vulnerability scan: %v", err)
	}

	pool, err := workers.New(rt.Config.Workers.Lanes, rt.Config.Progress)
	if err != nil {
		return err
	}
	osv := clients.NewOSVClient(rt.Config.OSV.URL, rt.Fetcher)
	scanner := services.NewVulnScanService(osv, pool, rt.Config.Matcher.EcosystemVersions, rt.Logger)

	result, err := scanner.Scan(ctx, forkPoints)
	if err != nil {
		return err
	}

	if err := rt.Store.WriteResults(rt.Config.Files.Results, result.Records); err != nil {
		return err
	}
	if err := rt.Store.WriteSummary(rt.Config.Files.Summary, result.Remediated); err != nil {
		return err
	}

	cli.PrintSummary(cmd.OutOrStdout(), result.Remediated, len(result.Records), time.Since(start))
	return nil
}

func main() {
	rootCmd.Version = cli.Version(version, commit, date)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
