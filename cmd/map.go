package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/pipeline"
)

var (
	mapDomain   string
	mapFormat   string
	mapOut      string
	mapNoVerify bool
)

var mapCmd = &cobra.Command{
	Use:   "map <company name>",
	Short: "Build an account map for one company",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts := pipeline.OptionsFromConfig(cfg.Discovery)
		if mapNoVerify {
			opts.Verify = false
		}

		env, err := initPipeline(ctx, cfg, "map", opts)
		if err != nil {
			return err
		}
		defer env.Close()

		company := model.Company{Name: strings.Join(args, " "), Domain: mapDomain}
		m, err := env.Pipeline.Run(ctx, company)
		if err != nil {
			return eris.Wrap(err, "map")
		}

		zap.L().Info("account map complete",
			zap.String("company", m.Company),
			zap.String("run_id", m.RunID),
			zap.Int("people", len(m.OrgTree)),
			zap.Int("gaps", len(m.Gaps)),
		)
		for name, state := range env.Guard.Breakers().States() {
			zap.L().Debug("circuit state", zap.String("service", name), zap.Stringer("state", state))
		}

		return writeMapTo(mapOut, m, mapFormat)
	},
}

func init() {
	mapCmd.Flags().StringVar(&mapDomain, "domain", "", "company web domain (derived from the name when omitted)")
	mapCmd.Flags().StringVar(&mapFormat, "format", formatJSON, "output format: json, yaml or xlsx")
	mapCmd.Flags().StringVarP(&mapOut, "out", "o", "", "output file (default stdout)")
	mapCmd.Flags().BoolVar(&mapNoVerify, "no-verify", false, "skip the per-person verification searches")
	rootCmd.AddCommand(mapCmd)
}
