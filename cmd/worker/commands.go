package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/connecta/collabo-backend/internal/events"
)

func reconcileCmd(b backends) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Create the missing workspace of every project left half-written",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := b.reconciler(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			repaired, err := r.Reconcile(cmd.Context())
			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				if perr := printJSON(out, map[string]any{"repaired": repaired}); perr != nil {
					return perr
				}
				return err
			}
			for _, id := range repaired {
				fmt.Fprintln(out, "repaired", id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d project(s) repaired\n", len(repaired))
			return nil
		},
	}
}

func queueCmd(b backends) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the event queue depth",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueue(cmd, b, func(ctx context.Context, q *events.Queue) error {
				d, err := q.Depth(ctx)
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return printJSON(cmd.OutOrStdout(), d)
				}
				renderDepth(cmd.OutOrStdout(), d)
				return nil
			})
		},
	}
}

func deadLettersCmd(b backends) *cobra.Command {
	dl := &cobra.Command{Use: "deadletters", Short: "Inspect and replay failed events"}

	var limit int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List dead-lettered events, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			return withQueue(cmd, b, func(ctx context.Context, q *events.Queue) error {
				evs, err := q.DeadLetters(ctx, limit)
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return printJSON(cmd.OutOrStdout(), evs)
				}
				renderDeadLetters(cmd.OutOrStdout(), evs)
				return nil
			})
		},
	}
	list.Flags().Int64Var(&limit, "limit", 50, "maximum number of events")

	replay := &cobra.Command{
		Use:   "replay",
		Short: "Move every dead-lettered event back to the pending queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueue(cmd, b, func(ctx context.Context, q *events.Queue) error {
				n, err := q.ReplayDeadLetters(ctx)
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return printJSON(cmd.OutOrStdout(), map[string]int{"replayed": n})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d event(s) replayed\n", n)
				return nil
			})
		},
	}

	dl.AddCommand(list, replay)
	return dl
}

func withQueue(cmd *cobra.Command, b backends, fn func(ctx context.Context, q *events.Queue) error) error {
	q, closeFn, err := b.queue(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(cmd.Context(), q)
}

func renderDeadLetters(w io.Writer, evs []events.Event) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Type", "Attempts", "Last Error", "Enqueued At"})
	for _, ev := range evs {
		enqueued := ""
		if !ev.EnqueuedAt.IsZero() {
			enqueued = ev.EnqueuedAt.UTC().Format("2006-01-02 15:04:05")
		}
		tw.AppendRow(table.Row{ev.ID, ev.Type, ev.Attempts, truncate(ev.LastError, 60), enqueued})
	}
	tw.AppendFooter(table.Row{"", "", "", "Total", len(evs)})
	tw.Render()
}

func renderDepth(w io.Writer, d events.Depth) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Pending", "Processing", "Dead"})
	tw.AppendRow(table.Row{d.Pending, d.Processing, d.Dead})
	tw.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
