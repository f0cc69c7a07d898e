package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/waytrace/waytrace/pkg/query"
	"github.com/waytrace/waytrace/pkg/trace"
	"github.com/waytrace/waytrace/pkg/wire"
)

var (
	statsFilter filterFlags
	statsGaps   int
)

var statsCmd = &cobra.Command{
	Use:   "stats <log-file>",
	Short: "Summarize a debug log and rank its surprising time gaps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		spec, err := statsFilter.spec()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()

		t, err := trace.NewBuilder(trace.WithLogger(log)).Parse(f)
		if err != nil {
			return err
		}

		v := query.NewView(t, query.WithViewLogger(log))
		if err := v.SetFilter(spec); err != nil {
			return err
		}

		smallest, median, biggest := v.DeltaStats()

		methods := make(map[string]int)
		classes := make(map[string]int)
		for i := 0; i < v.Len(); i++ {
			e := v.EventAt(i)
			methods[e.Method]++
			classes[e.Object.Class]++
		}

		type gap struct {
			Row   int     `json:"row"`
			Time  int64   `json:"time"`
			Delta int64   `json:"delta"`
			Score float64 `json:"score"`
		}
		gaps := make([]gap, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			r := v.Row(i)
			gaps = append(gaps, gap{Row: i, Time: r.Event.Time, Delta: r.TimeDelta, Score: v.DeltaScore(i)})
		}
		sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Score > gaps[j].Score })
		if statsGaps > 0 && statsGaps < len(gaps) {
			gaps = gaps[:statsGaps]
		}

		if jsonOutput {
			out := map[string]any{
				"trace":         t.ID,
				"events":        t.Len(),
				"visible":       v.Len(),
				"skipped":       t.Skipped,
				"smallestDelta": smallest,
				"medianDelta":   median,
				"biggestDelta":  biggest,
				"byMethod":      methods,
				"byClass":       classes,
				"topGaps":       gaps,
			}
			data, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("events:   %d (%d visible, %d lines skipped)\n", t.Len(), v.Len(), t.Skipped)
		fmt.Printf("deltas:   smallest %s  median %s  biggest %s\n",
			wire.FormatTime(smallest), wire.FormatTime(median), wire.FormatTime(biggest))

		fmt.Println("\ntop gaps:")
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROW\tTIME\tDELTA\tSCORE")
		for _, g := range gaps {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\n", g.Row, wire.FormatTime(g.Time), wire.FormatTime(g.Delta), g.Score)
		}
		w.Flush()

		fmt.Println("\nby class:")
		printCounts(classes)
		fmt.Println("\nby method:")
		printCounts(methods)
		return nil
	},
}

// printCounts prints a count map, most frequent first.
func printCounts(counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s\t%d\n", k, counts[k])
	}
	w.Flush()
}

func init() {
	statsFilter.register(statsCmd)
	statsCmd.Flags().IntVar(&statsGaps, "gaps", 10, "Number of top gaps to show")
	rootCmd.AddCommand(statsCmd)
}
