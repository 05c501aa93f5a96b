package root

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/engine"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last saved drill state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := st.loadSave(ctx)
			if err != nil {
				return err
			}
			now := time.Now()
			v, err := engine.BuildStatus(s, st.data, now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconDrill, "Drill "+v.PlayerID))
			fmt.Fprintln(out, ui.Muted.Render("saved "+humanize.Time(s.SavedAt)))
			where := string(v.Location)
			if v.Drilling {
				where += ", " + ui.Good.Render("drilling")
			}
			fmt.Fprintln(out, ui.LabelValue("Location", where))
			fmt.Fprintln(out, ui.LabelValue("Depth", fmt.Sprintf("%sm in %s (record %sm)", humanize.Comma(int64(v.Depth)), v.Biome, humanize.Comma(int64(v.MaxDepth)))))
			fmt.Fprintln(out, ui.LabelValue("Heat", ui.HeatBar(v.Heat, v.Phase)))
			fmt.Fprintln(out, ui.LabelValue("Hull", ui.Integrity(v.Integrity)))
			fmt.Fprintln(out, ui.LabelValue("Vent", fmt.Sprintf("combo x%d, %s", v.Combo, readyStr(v.VentReady))))
			fmt.Fprintln(out, ui.LabelValue("Drones", fmt.Sprintf("%d idle, %d away", v.Drones, v.DronesAway)))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconBox+" Resources"))
			fmt.Fprintln(out, ui.Bundle(v.Resources))
			fmt.Fprintln(out, "")

			if len(v.Jobs) > 0 {
				fmt.Fprintln(out, ui.H2.Render(ui.IconCraft+" Crafting"))
				for _, j := range v.Jobs {
					state := ui.Good.Render("ready")
					if j.Remaining > 0 {
						state = ui.Warn.Render(fmt.Sprintf("%.0f%%", j.Progress*100)) + " " + ui.Muted.Render("done "+humanize.Time(j.CompletionTime))
					}
					fmt.Fprintf(out, "- %s %s %s\n", ui.Key.Render(j.PartID), ui.Muted.Render(j.ID), state)
				}
				fmt.Fprintln(out, "")
			}

			if len(v.Expeditions) > 0 {
				fmt.Fprintln(out, ui.H2.Render(ui.IconDrone+" Expeditions"))
				for _, x := range v.Expeditions {
					state := ui.Good.Render("returned")
					if !x.Returned {
						state = ui.Muted.Render("back " + humanize.Time(x.ReturnsAt()))
					}
					fmt.Fprintf(out, "- %s %s x%d for %s %s\n", ui.Key.Render(string(x.Difficulty)), ui.Muted.Render(x.ID), x.DroneCount, x.Target, state)
				}
				fmt.Fprintln(out, "")
			}

			if len(v.Effects) > 0 {
				fmt.Fprintln(out, ui.H2.Render("Active effects"))
				for _, e := range v.Effects {
					fmt.Fprintf(out, "- %s %s %+.0f%% %s\n", ui.Key.Render(e.BuffID), e.Stat, e.Pct*100, ui.Muted.Render("ends "+humanize.Time(e.ExpiresAt)))
				}
				fmt.Fprintln(out, "")
			}

			fmt.Fprintln(out, ui.H2.Render("Lifetime"))
			fmt.Fprintf(out, "- mined %s, %s strikes, %s vents, %s overheats\n",
				ui.Amount(v.Totals.Mined), humanize.Comma(int64(v.Totals.Strikes)),
				humanize.Comma(int64(v.Totals.Vents)), humanize.Comma(int64(v.Totals.Overheats)))
			fmt.Fprintf(out, "- %d parts crafted, %d expeditions collected\n", v.Totals.Crafted, v.Totals.Expeditions)
			return nil
		},
	}

	return cmd
}

func readyStr(ok bool) string {
	if ok {
		return ui.Good.Render("ready")
	}
	return ui.Warn.Render("cooling down")
}
