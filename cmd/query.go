package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query <phrase>",
	Short: "Answer a plain-language question about audit findings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("query"); err != nil {
			return err
		}

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		proc, err := buildProcessor(cfg, env)
		if err != nil {
			return err
		}

		phrase := strings.Join(args, " ")
		resp := proc.Process(ctx, phrase)
		zap.L().Info("query complete",
			zap.String("type", resp.Type),
			zap.String("pattern", resp.PatternID),
			zap.Int("results", resp.ResultsCount),
		)

		out := cmd.OutOrStdout()
		if queryJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return eris.Wrap(err, "encode response")
			}
			return nil
		}
		_, _ = fmt.Fprintln(out, resp.Answer)
		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the full response as JSON")
	rootCmd.AddCommand(queryCmd)
}
