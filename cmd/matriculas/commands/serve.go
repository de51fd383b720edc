package commands

import (
	"ufsc-matriculas/internal/components/telemetry"
	"ufsc-matriculas/internal/roster"
	"ufsc-matriculas/internal/webui"
	"ufsc-matriculas/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var servePort *int

func init() {
	servePort = serveCmd.Flags().Int("port", 0, "The port to listen on (default 8080).")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port <port>]",
	Short: "Serves a web page where anyone can log in and download their list.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if *servePort > 0 {
			cfg.Port = *servePort
		}
		opts, err := cfg.cagrOptions()
		if err != nil {
			return err
		}

		server := webui.NewServer(roster.CagrLogin(opts), cfg.BatchSize, telemetry.SlogAPI{})
		return serviceutil.StartHttpServer(cmd.Context(), cfg.Port, server.Mux())
	},
}
