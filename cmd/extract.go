package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/orgmap-cli/internal/extract"
	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/pipeline"
	"github.com/sells-group/orgmap-cli/internal/resolve"
)

// gapOffline is always reported for maps built from local text.
const gapOffline = "Offline extraction: no search or verification performed"

var (
	extractCompany string
	extractDomain  string
	extractFormat  string
	extractOut     string
)

// document is one local text file and the label it is cited by.
type document struct {
	Label string
	Text  string
}

// mapFromDocuments runs extraction, merge, hierarchy and roles over local text.
func mapFromDocuments(company, domain string, docs []document, now time.Time) *model.AccountMap {
	page := extract.NewPage(company)

	var (
		records []model.CandidateRecord
		texts   []string
	)
	for _, d := range docs {
		src := model.Source{URLOrLabel: d.Label, Kind: model.SourcePageFetch}
		records = append(records, page.Extract(d.Text, src)...)
		texts = append(texts, d.Text)
	}

	execs := pipeline.BuildHierarchy(resolve.Merge(records))
	return pipeline.Assemble(pipeline.AssembleInput{
		Company:     company,
		Domain:      pipeline.ResolveDomain(company, domain),
		Executives:  execs,
		Roles:       pipeline.ClassifyRoles(execs, company),
		Facts:       pipeline.ParseCompanyFacts(texts),
		Gaps:        []string{gapOffline},
		GeneratedAt: now,
	})
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Build an account map from local text files (OCR output, saved pages, notes)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("offline"); err != nil {
			return err
		}
		if extractCompany == "" {
			return eris.New("--company is required")
		}

		docs := make([]document, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "read %s", path)
			}
			docs = append(docs, document{Label: "file:" + filepath.Base(path), Text: string(data)})
		}

		m := mapFromDocuments(extractCompany, extractDomain, docs, time.Now().UTC())
		return writeMapTo(extractOut, m, extractFormat)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractCompany, "company", "", "company the text describes (required)")
	extractCmd.Flags().StringVar(&extractDomain, "domain", "", "company web domain")
	extractCmd.Flags().StringVar(&extractFormat, "format", formatJSON, "output format: json, yaml or xlsx")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(extractCmd)
}
