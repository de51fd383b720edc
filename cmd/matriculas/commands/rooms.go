package commands

import (
	"os"
	"ufsc-matriculas/internal/roster"
	"ufsc-matriculas/internal/scrapers/cagr"

	"github.com/spf13/cobra"
)

var (
	roomsUsername *string
	roomsFilter   *[]string
)

func init() {
	roomsUsername = roomsCmd.Flags().StringP("username", "u", "", "Your idUFSC (overrides the config).")
	roomsFilter = roomsCmd.Flags().StringSlice("room", nil, "Only show rooms whose name contains this (repeatable).")
	rootCmd.AddCommand(roomsCmd)
}

var roomsCmd = &cobra.Command{
	Use:   "rooms [--room <name>]...",
	Short: "Prints the undergraduate course rooms of the forum.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if *roomsUsername != "" {
			cfg.Username = *roomsUsername
		}
		if len(*roomsFilter) > 0 {
			cfg.Rooms = *roomsFilter
		}

		username, password, err := newTerminalPrompt().credentials(cfg.Username, cfg.Password)
		if err != nil {
			return err
		}
		opts, err := cfg.cagrOptions()
		if err != nil {
			return err
		}

		session, err := cagr.Login(cmd.Context(), username, password, opts)
		if err != nil {
			return err
		}
		rooms, err := session.ListRooms(cmd.Context())
		if err != nil {
			return err
		}

		renderRooms(os.Stdout, roster.FilterRooms(rooms, cfg.Rooms))
		return nil
	},
}
