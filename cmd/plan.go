package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/orgmap-cli/internal/pipeline"
)

var planDomain string

// searchPlan is what `orgmap plan` prints.
type searchPlan struct {
	Company   string           `json:"company"`
	Domain    string           `json:"domain"`
	Queries   []pipeline.Query `json:"queries"`
	SitePaths []string         `json:"site_paths"`
}

func buildPlan(company, domain string) searchPlan {
	domain = pipeline.ResolveDomain(company, domain)
	return searchPlan{
		Company:   company,
		Domain:    domain,
		Queries:   pipeline.PlanQueries(company, domain),
		SitePaths: pipeline.CompanySitePaths(domain),
	}
}

func printPlan(w io.Writer, p searchPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

var planCmd = &cobra.Command{
	Use:   "plan <company name>",
	Short: "Print the search plan for a company without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("offline"); err != nil {
			return err
		}
		return printPlan(os.Stdout, buildPlan(strings.Join(args, " "), planDomain))
	},
}

func init() {
	planCmd.Flags().StringVar(&planDomain, "domain", "", "company web domain (derived from the name when omitted)")
	rootCmd.AddCommand(planCmd)
}
