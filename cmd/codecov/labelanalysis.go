package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
	"github.com/codecov/cli/internal/labelanalysis"
	"github.com/codecov/cli/internal/resolver"
)

var labelAnalysisFlags struct {
	baseSHA         string
	headSHA         string
	token           string
	requestedLabels []string
	maxWaitSeconds  int
}

var labelAnalysisCmd = &cobra.Command{
	Use:   "label-analysis",
	Short: "Ask Codecov which test labels need to run for a diff",
	RunE: func(cmd *cobra.Command, args []string) error {
		o := &labelAnalysisFlags
		ctx := cmd.Context()

		if err := resolver.ValidateSHA(o.baseSHA); err != nil {
			return fmt.Errorf("base sha: %w", err)
		}
		res := newResolver(map[resolver.Field]string{
			resolver.FieldCommitSHA: o.headSHA,
		}, nil)
		headSHA, err := res.Require(ctx, resolver.FieldCommitSHA)
		if err != nil {
			return err
		}

		analyzer := &labelanalysis.Analyzer{
			Client: api.New(api.Options{
				BaseURL: apiURL(),
				Logger:  logger,
			}),
			Token:   resolveToken(o.token),
			MaxWait: time.Duration(o.maxWaitSeconds) * time.Second,
			Logger:  logger,
		}
		result, ok, err := analyzer.Run(ctx, labelanalysis.Request{
			BaseCommit:      o.baseSHA,
			HeadCommit:      headSHA,
			RequestedLabels: o.requestedLabels,
		})
		if err != nil {
			return err
		}
		if !ok {
			logger.Warn("falling back to running all requested labels")
			result = labelanalysis.FallbackResult(o.requestedLabels)
		}
		logger.Info("label analysis done",
			zap.Int("to_run", len(result.AbsentLabels)+len(result.GlobalLevelLabels)))
		out, err := json.Marshal(result)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	f := labelAnalysisCmd.Flags()
	f.StringVar(&labelAnalysisFlags.baseSHA, "base-sha", "", "commit SHA the diff is computed against")
	f.StringVarP(&labelAnalysisFlags.headSHA, "head-sha", "C", "", "commit SHA being tested, defaults to HEAD")
	f.StringVarP(&labelAnalysisFlags.token, "token", "t", "", "repository token (envvar: CODECOV_TOKEN)")
	f.StringSliceVar(&labelAnalysisFlags.requestedLabels, "requested-labels", nil, "candidate labels, comma separated")
	f.IntVar(&labelAnalysisFlags.maxWaitSeconds, "max-wait-time", 0, "seconds to wait for the backend before falling back, 0 waits forever")
	_ = labelAnalysisCmd.MarkFlagRequired("base-sha")
	rootCmd.AddCommand(labelAnalysisCmd)
}
