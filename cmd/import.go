package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/findings-cli/internal/importer"
)

var (
	importPath  string
	importSheet string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import audit findings from an Excel or CSV sheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		sheet := cfg.Import.SheetName
		if importSheet != "" {
			sheet = importSheet
		}
		im := importer.New(env.Guarded, env.Departments, newTagger(cfg), importer.Options{
			Sheet:     importer.SheetOptions{SheetName: sheet},
			HeaderRow: cfg.Import.HeaderRow,
			BatchSize: cfg.Import.BatchSize,
		})

		res, err := im.ImportFile(ctx, importPath)
		if err != nil {
			return eris.Wrap(err, "import findings")
		}

		zap.L().Info("import complete",
			zap.String("file", importPath),
			zap.Int("rows", res.Rows),
			zap.Int("imported", res.Imported),
			zap.Int("skipped", res.Skipped),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importPath, "xlsx", "", "path to the .xlsx (or .csv) findings sheet (required)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "worksheet name (default from config, else the first sheet)")
	_ = importCmd.MarkFlagRequired("xlsx")
	rootCmd.AddCommand(importCmd)
}
