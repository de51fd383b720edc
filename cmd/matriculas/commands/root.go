package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"ufsc-matriculas/internal/components/telemetry"
	"ufsc-matriculas/internal/scrapers/cagr"
	"ufsc-matriculas/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dumpDir    *string
)

var rootCmd = &cobra.Command{
	Use:   "matriculas",
	Short: "matriculas lists the enrollment ids of UFSC students using the CAGR forum.",
	// usage is noise when the forum rejects a login
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", defaultConfigName, "The config file, values in <name>.local.json5 take priority. By default it is looked up in the working directory and its parents.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every request made to the forum.")
	dumpDir = rootCmd.PersistentFlags().String("dump", "", "Write every http exchange (passwords redacted) into this directory.")
}

func ExecuteContext(ctx context.Context) {
	ctx, cancel := serviceutil.SignalContext(ctx)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, cagr.ErrAuth) {
		fmt.Fprintln(os.Stderr, messageAuthError)
		os.Exit(1)
	}
	if err != nil {
		serviceutil.Fatal("matriculas failed", err)
	}
}

// setup loads the config and installs logging/tracing, the returned function
// flushes pending traces.
func setup(cmd *cobra.Command) (Config, func(), error) {
	cfg, err := loadConfig(*configPath, !cmd.Flags().Changed("config"))
	if err != nil {
		return Config{}, nil, err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = *verbose
	}
	telemetry.InitSlog(cfg.Verbose)

	shutdown, err := telemetry.Setup(cmd.Context(), "matriculas", cfg.Telemetry)
	if err != nil {
		return Config{}, nil, fmt.Errorf("setup telemetry: %w", err)
	}
	cleanup := func() {
		err := shutdown(context.Background())
		if err != nil {
			telemetry.SlogAPI{}.ReportWarning("telemetry.shutdown", err)
		}
	}
	return cfg, cleanup, nil
}
