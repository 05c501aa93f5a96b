package root

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/ui"
)

func newSavesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "List stored saves",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := st.saves.List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No saves yet."))
				return nil
			}
			for _, s := range list {
				fmt.Fprintf(out, "- %s %s %s\n", ui.Key.Render(s.PlayerID),
					ui.Muted.Render(fmt.Sprintf("rev %d", s.Revision)), humanize.Time(s.SavedAt))
			}
			return nil
		},
	}

	return cmd
}
