package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"
	"ufsc-matriculas/internal/components/telemetry"
	"ufsc-matriculas/internal/roster"

	"github.com/spf13/cobra"
)

var (
	listUsername  *string
	listPrefix    *string
	listRooms     *[]string
	listBatchSize *int
	listOut       *string
)

func init() {
	listUsername = listCmd.Flags().StringP("username", "u", "", "Your idUFSC (overrides the config).")
	listPrefix = listCmd.Flags().StringP("prefix", "p", "", "Only keep enrollment ids starting with this prefix.")
	listRooms = listCmd.Flags().StringSlice("room", nil, "Only list rooms whose name contains this (repeatable).")
	listBatchSize = listCmd.Flags().Int("batch-size", 0, "Split the output into files of at most this many ids (default 5000).")
	listOut = listCmd.Flags().StringP("out", "o", "", "The directory to write the output into.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--prefix <prefix>] [--room <name>]... [--out <dir>]",
	Short: "Lists the enrollment ids of every undergraduate course room and writes them to a file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if *listUsername != "" {
			cfg.Username = *listUsername
		}
		if cmd.Flags().Changed("prefix") {
			cfg.Prefix = *listPrefix
		}
		if len(*listRooms) > 0 {
			cfg.Rooms = *listRooms
		}
		if *listBatchSize > 0 {
			cfg.BatchSize = *listBatchSize
		}
		if *listOut != "" {
			cfg.OutDir = *listOut
		}

		username, password, err := newTerminalPrompt().credentials(cfg.Username, cfg.Password)
		if err != nil {
			return err
		}
		opts, err := cfg.cagrOptions()
		if err != nil {
			return err
		}

		slog.Info("authenticating on the CAGR forum", "username", username)
		runner := roster.NewRunner(roster.CagrLogin(opts), telemetry.SlogAPI{})
		bar := newRoomProgress()
		runner.Progress = bar.update

		t1 := time.Now()
		result, err := runner.Run(cmd.Context(), roster.Request{
			Username:   username,
			Password:   password,
			Prefix:     cfg.Prefix,
			RoomFilter: cfg.Rooms,
		})
		bar.stop()
		if err != nil {
			return err
		}
		slog.Info(
			"scraping time",
			"seconds", time.Since(t1).Seconds(),
			"rooms", len(result.Rooms),
			"ids", result.Total,
		)

		paths, err := roster.WriteFiles(cfg.OutDir, result, cfg.BatchSize)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Pronto! %d matrículas com o prefixo %q.\n", len(result.StudentIds), result.Prefix)
		for _, path := range paths {
			fmt.Fprintln(os.Stdout, path)
		}
		fmt.Fprintln(os.Stdout, batchWarning(cfg.BatchSize))
		return nil
	},
}
