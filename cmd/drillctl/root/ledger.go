package root

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/infra/storage"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/ui"
)

func newLedgerCmd() *cobra.Command {
	var after int64
	var limit int
	var eventType string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Page through the raw event ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			var evs []storage.StoredEvent
			if eventType != "" {
				evs, err = st.events.GetByEventType(ctx, st.playerID, eventType)
				evs = pageOf(evs, after, limit)
			} else {
				evs, err = st.events.Page(ctx, st.playerID, after, limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(evs)
			}
			if len(evs) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No events."))
				return nil
			}
			for _, e := range evs {
				fmt.Fprintf(out, "%6d %s %-22s %8sm %s\n",
					e.Seq,
					ui.Muted.Render(humanize.Time(e.Timestamp)),
					ui.Key.Render(e.EventType),
					humanize.Comma(int64(e.Depth)),
					ui.Muted.Render(e.TargetID))
			}
			fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("next: --after %d", evs[len(evs)-1].Seq)))
			return nil
		},
	}

	cmd.Flags().Int64Var(&after, "after", 0, "only events with a sequence number above this")
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().StringVar(&eventType, "type", "", "only this event type, e.g. OVERHEATED")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func pageOf(evs []storage.StoredEvent, after int64, limit int) []storage.StoredEvent {
	out := evs[:0]
	for _, e := range evs {
		if e.Seq <= after {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out
}
