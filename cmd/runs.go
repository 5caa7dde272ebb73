package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect account-mapping run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("runs"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		company, _ := cmd.Flags().GetString("company")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status:  model.RunStatus(status),
			Company: company,
			Limit:   limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}
		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// runDetail is a run with its phase records.
type runDetail struct {
	*model.Run
	Phases []model.RunPhase `json:"phases"`
}

var runsGetCmd = &cobra.Command{
	Use:   "get <run-id>",
	Short: "Show a run, its phases and its account map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("runs"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		detail, err := loadRunDetail(cmd, st, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	},
}

func loadRunDetail(cmd *cobra.Command, st store.Store, id string) (*runDetail, error) {
	run, err := st.GetRun(cmd.Context(), id)
	if err != nil {
		return nil, eris.Wrap(err, "runs get")
	}
	phases, err := st.ListPhases(cmd.Context(), id)
	if err != nil {
		return nil, eris.Wrap(err, "runs get: phases")
	}
	return &runDetail{Run: run, Phases: phases}, nil
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate run statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("runs"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, store.RunFilter{Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		formatRunStats(os.Stdout, computeRunStats(runs))
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (queued, searching, complete, failed, ...)")
	runsListCmd.Flags().String("company", "", "filter by company name")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")
	runsStatsCmd.Flags().Int("limit", 1000, "number of most recent runs to summarize")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsGetCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// runStats holds aggregate statistics computed from a set of runs.
type runStats struct {
	Total         int
	Complete      int
	Failed        int
	NoPeople      int
	Other         int
	AvgDurSecs    float64
	AvgPeople     float64
	AvgGaps       float64
	MostCommonGap string
}

// computeRunStats summarizes finished runs and their account maps.
func computeRunStats(runs []model.Run) runStats {
	var s runStats
	s.Total = len(runs)

	var (
		totalDur         time.Duration
		withResult       int
		people, gapCount int
		gapFreq          = map[string]int{}
	)
	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			s.Complete++
			totalDur += r.UpdatedAt.Sub(r.CreatedAt)
		case model.RunStatusFailed:
			s.Failed++
		default:
			s.Other++
		}

		if r.Result == nil {
			continue
		}
		withResult++
		people += len(r.Result.OrgTree)
		gapCount += len(r.Result.Gaps)
		if r.Result.Status == model.MapStatusNoVerifiedPeople {
			s.NoPeople++
		}
		for _, g := range r.Result.Gaps {
			gapFreq[g]++
		}
	}

	if s.Complete > 0 {
		s.AvgDurSecs = totalDur.Seconds() / float64(s.Complete)
	}
	if withResult > 0 {
		s.AvgPeople = float64(people) / float64(withResult)
		s.AvgGaps = float64(gapCount) / float64(withResult)
	}
	best := 0
	for g, n := range gapFreq {
		if n > best || (n == best && g < s.MostCommonGap) {
			best, s.MostCommonGap = n, g
		}
	}
	return s
}

// formatRunStats writes aggregate stats to out.
func formatRunStats(out io.Writer, s runStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Complete:\t%d\n", s.Complete)
	_, _ = fmt.Fprintf(w, "  No verified people:\t%d\n", s.NoPeople)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "Other:\t%d\n", s.Other)
	if s.AvgDurSecs > 0 {
		_, _ = fmt.Fprintf(w, "Avg duration:\t%.1fs\n", s.AvgDurSecs)
	}
	_, _ = fmt.Fprintf(w, "Avg people per map:\t%.1f\n", s.AvgPeople)
	_, _ = fmt.Fprintf(w, "Avg gaps per map:\t%.1f\n", s.AvgGaps)
	if s.MostCommonGap != "" {
		_, _ = fmt.Fprintf(w, "Most common gap:\t%s\n", s.MostCommonGap)
	}
	_ = w.Flush()
}

// formatRunsList writes a tabular list of runs to out.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tSTATUS\tPEOPLE\tGAPS\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t-------\t------\t------\t----\t-------\t--------")

	for _, r := range runs {
		company := r.Company.Name
		if len(company) > 30 {
			company = company[:27] + "..."
		}

		people, gaps := "-", "-"
		if r.Result != nil {
			people = fmt.Sprint(len(r.Result.OrgTree))
			gaps = fmt.Sprint(len(r.Result.Gaps))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			company,
			r.Status,
			people,
			gaps,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
