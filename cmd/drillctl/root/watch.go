package root

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/network"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/tui"
)

func newWatchCmd() *cobra.Command {
	var server string
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the live dashboard of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return tui.RunWatch(ctx, network.NewRemote(server, 5*time.Second), refresh, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "drill-server base URL")
	cmd.Flags().DurationVar(&refresh, "refresh", 500*time.Millisecond, "poll interval")
	return cmd
}
