package root

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/part"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/ui"
)

func newPartsCmd() *cobra.Command {
	var slotName string

	cmd := &cobra.Command{
		Use:   "parts",
		Short: "List the craftable parts of a slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := part.ParseSlot(slotName)
			if err != nil {
				return err
			}
			st, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCraft, fmt.Sprintf("%s parts", slot)))
			for _, p := range st.data.Parts.ForSlot(slot) {
				note := ui.Muted.Render(p.CraftDuration.Round(time.Second).String())
				switch {
				case p.FusionOnly():
					note = ui.Gold.Render("fusion only")
				case p.Blueprint != "":
					note += " " + ui.Warn.Render("needs "+p.Blueprint)
				}
				fmt.Fprintf(out, "T%-2d %-28s %s %s\n", p.Tier, ui.Key.Render(p.Name), ui.Bundle(p.Cost), note)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&slotName, "slot", "bit", "equipment slot")
	return cmd
}
