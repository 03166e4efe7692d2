// Package main is stage 1 of the fork-point scanner: it walks the vendor catalog
// and writes the highest upstream fork point of every component to a flat file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ortelius/forkpoint-cves/internal/cli"
	"github.com/ortelius/forkpoint-cves/internal/clients"
	"github.com/ortelius/forkpoint-cves/internal/services"
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
	Use:   "forkpoints",
	Short: "Collect the upstream fork point of every vendored component",
	Long: `forkpoints pages through the vendor catalog, keeps the highest upstream
fork point recorded for each component and writes them to the fork point file
read by forkvulns.

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

	rt, err := cli.Bootstrap(afero.NewOsFs())
	if err != nil {
		return err
	}
	defer rt.Logger.Sync() //nolint:errcheck

	catalog := clients.NewCatalogClient(rt.Config.Catalog.URL, rt.Fetcher)
	resolver := services.NewForkPointResolver(catalog, rt.Config.Catalog.PageDelay, rt.Logger)

	forkPoints, err := resolver.Resolve(ctx)
	if err != nil {
		rt.Logger.Sugar().Errorf("Stage 1 aborted: %v", err)
		return err
	}
	return rt.Store.WriteForkPoints(rt.Config.Files.ForkPoints, forkPoints)
}

func main() {
	rootCmd.Version = cli.Version(version, commit, date)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
