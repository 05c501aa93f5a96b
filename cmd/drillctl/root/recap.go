package root

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/infra/storage"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/ui"
)

func newRecapCmd() *cobra.Command {
	var window time.Duration
	var sinceSave bool

	cmd := &cobra.Command{
		Use:   "recap",
		Short: "Summarise what the drill did recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			since := time.Now().Add(-window)
			if sinceSave {
				s, err := st.loadSave(ctx)
				if err != nil {
					return err
				}
				since = s.SavedAt
			}

			recap, err := storage.NewReconstructor(st.events).GenerateRecap(ctx, st.playerID, since)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconLog, "While you were away"))
			fmt.Fprintln(out, ui.Muted.Render("since "+humanize.Time(since)))
			fmt.Fprintln(out, "")

			t := recap.Totals
			fmt.Fprintln(out, ui.LabelValue("Deepest", humanize.Comma(int64(t.Deepest))+"m"))
			fmt.Fprintln(out, ui.LabelValue("Strikes", humanize.Comma(int64(t.Strikes))))
			fmt.Fprintln(out, ui.LabelValue("Vents", fmt.Sprintf("%d (%d perfect)", t.Vents, t.PerfectVents)))
			fmt.Fprintln(out, ui.LabelValue("Overheats", t.Overheats))
			fmt.Fprintln(out, ui.LabelValue("Crafts", fmt.Sprintf("%d ready, %d collected", t.CraftsReady, t.CraftsTaken)))
			fmt.Fprintln(out, ui.LabelValue("Expeditions", fmt.Sprintf("%d collected, %d drones lost", t.Expeditions, t.DronesLost)))
			if len(t.Gained) > 0 {
				kinds := make([]string, 0, len(t.Gained))
				for k := range t.Gained {
					kinds = append(kinds, k)
				}
				sort.Strings(kinds)
				line := ""
				for i, k := range kinds {
					if i > 0 {
						line += " · "
					}
					line += k + " " + ui.Amount(t.Gained[k])
				}
				fmt.Fprintln(out, ui.LabelValue("Gained", line))
			}
			fmt.Fprintln(out, "")

			if len(recap.Events) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Nothing notable happened."))
				return nil
			}
			for _, e := range recap.Events {
				fmt.Fprintf(out, "%s %s %s\n", ui.Impact(e.Impact), ui.Muted.Render(e.Timestamp.Local().Format("Jan 02 15:04")), e.Summary)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&window, "window", 24*time.Hour, "how far back to look")
	cmd.Flags().BoolVar(&sinceSave, "since-save", false, "start from the last save instead of --window")
	return cmd
}
