package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/ui"
)

const Version = "0.3.0"

var opts struct {
	configPath string
	dbPath     string
	playerID   string
}

var rootCmd = &cobra.Command{
	Use:           "drillctl",
	Short:         "Inspect a deep-core drill save and its ledger",
	Long:          "drillctl reads the drill server's SQLite database and never writes to it.\nThe watch command drives a running server over its HTTP API instead.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "server config file")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite path (overrides server.db_path)")
	rootCmd.PersistentFlags().StringVar(&opts.playerID, "player", "", "player id (overrides server.player_id)")

	rootCmd.AddCommand(
		newStatusCmd(),
		newStatsCmd(),
		newRecapCmd(),
		newLedgerCmd(),
		newSavesCmd(),
		newPartsCmd(),
		newWatchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
