package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/rules"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/stats"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/ui"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Resolve the saved drill's stats and list its equipment",
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
			resolved, err := rules.ResolveState(s, st.data.Catalogs(), time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconDrill, "Resolved stats"))
			for _, stat := range stats.All() {
				v := resolved.Get(stat)
				line := fmt.Sprintf("%-17s %10.2f", stat, v)
				if v == 0 {
					line = ui.Muted.Render(line)
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Equipment"))
			for _, slot := range part.Slots {
				item, ok := s.Equipped[slot]
				if !ok {
					fmt.Fprintf(out, "- %-10s %s\n", slot, ui.Bad.Render("empty"))
					continue
				}
				p, ok := st.data.Parts.Get(item.PartID)
				if !ok {
					fmt.Fprintf(out, "- %-10s %s\n", slot, ui.Bad.Render("unknown part "+item.PartID))
					continue
				}
				fmt.Fprintf(out, "- %-10s %s %s\n", slot, ui.Key.Render(p.Name), ui.Muted.Render(fmt.Sprintf("T%d %s", p.Tier, p.Rarity)))
			}
			if ids := s.EquippedArtifactIDs(); len(ids) > 0 {
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, ui.H2.Render("Artifacts"))
				for _, id := range ids {
					i := s.FindArtifact(id)
					fmt.Fprintf(out, "- %s %s\n", ui.Gold.Render(s.Artifacts[i].DefID), ui.Muted.Render(id))
				}
			}
			return nil
		},
	}

	return cmd
}
