package main

import (
	"fmt"
	"os"
	"time"

	"centival/adapters/chart"
	"centival/adapters/tabular"
	"centival/app"
	"centival/internal"
	"centival/internal/analysis"
	"centival/internal/config"
	"centival/internal/qcreport"
	"centival/internal/sidecar"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"profile":      "profile",
	"project-root": "project_root",
	"log-level":    "log_level",
	"reference":    "reference_path",
	"output-dir":   "output_dir",
	"figure":       "figure_path",
	"duplicates":   "duplicate_policy",
	"qc-dir":       "qc_dir",
}

// loadConfig reads configuration for cmd and installs the configured logger
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")

	flags := make(map[string]*pflag.Flag)
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}

	cfg, err := config.Load(config.LoadOptions{ConfigFile: cfgFile, Flags: flags})
	if err != nil {
		return nil, err
	}
	level, _ := internal.ParseLogLevel(cfg.LogLevel)
	internal.DefaultLogger = internal.NewLogger(level)
	return cfg, nil
}

func newValidateCmd() *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "validate [computed-results]",
		Short: "Join computed and reference values and report their correlation",
		Long: `Join the computed-results table with the reference table on subject ID,
compute Pearson correlation and OLS fit for global cortical SUVR and Centiloid,
print the statistics and write a two-panel scatter figure.

Example: centival validate results/tables/all_subjects_results.csv --figure plots.png --log validation.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer internal.DefaultLogger.Sync()

			if len(args) == 1 {
				cfg.ComputedPath = args[0]
			}
			policy, err := analysis.ParseDuplicatePolicy(cfg.DuplicatePolicy)
			if err != nil {
				return err
			}
			paths := cfg.Resolve()

			logger := internal.DefaultLogger
			logger.Info("profile %s: computed=%s reference=%s output=%s",
				cfg.Profile, paths.ComputedPath, paths.ReferencePath, paths.OutputDir)

			svc := app.NewValidationService(
				tabular.NewDataReader(logger),
				chart.NewRenderer(cfg.FigureWidth, cfg.FigureHeight, logger),
				cmd.OutOrStdout(),
				logger,
			)
			res, err := svc.Run(app.ValidationRequest{
				ComputedPath:    paths.ComputedPath,
				ReferencePath:   paths.ReferencePath,
				OutputDir:       paths.OutputDir,
				FigurePath:      paths.FigurePath,
				LogPath:         logPath,
				DuplicatePolicy: policy,
				CodeVersion:     version,
			})
			if err != nil {
				return err
			}
			for _, a := range res.Artifacts {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s\n", a.Kind, a.Path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("reference", "", "reference table (CSV, TSV or XLSX)")
	f.String("output-dir", "", "directory for the figure, summary and manifest")
	f.String("figure", "", "figure path (default <output-dir>/correlation_plots.png)")
	f.String("duplicates", "", "duplicate subject IDs: keep_first or error")
	f.StringVar(&logPath, "log", "", "also write the text report to this file")

	return cmd
}

func newFixSidecarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fix-sidecar <output.json> <input.json>...",
		Short: "Merge split BIDS PET sidecars and fill missing required fields",
		Long: `Merge BIDS PET JSON sidecars into one. FrameDuration and FrameTimesStart
are concatenated across inputs and missing required PET fields get placeholders.

Example: centival fix-sidecar sub-01_pet.json part1.json part2.json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}
			defer internal.DefaultLogger.Sync()

			res, err := sidecar.FixFiles(args[0], args[1:], internal.DefaultLogger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ wrote %s (%d merged, %d keys injected)\n",
				res.Output, res.Merged, len(res.Injected))
			return nil
		},
	}
}

func newQCReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qc-report",
		Short: "Build the HTML QC report from per-subject QC images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer internal.DefaultLogger.Sync()

			paths := cfg.Resolve()
			resultsDir, _ := cmd.Flags().GetString("results-dir")
			if resultsDir == "" {
				resultsDir = paths.OutputDir
			}

			res, err := qcreport.Generate(qcreport.Options{
				QCDir:      paths.QCDir,
				ResultsDir: resultsDir,
				Now:        time.Now(),
			}, internal.DefaultLogger)
			if err != nil {
				return err
			}
			if len(res.Subjects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No subject QC folders found.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ QC report for %d subjects: %s\n", len(res.Subjects), res.Output)
			return nil
		},
	}

	cmd.Flags().String("qc-dir", "", "directory holding sub-* QC folders")
	cmd.Flags().String("results-dir", "", "directory holding the validation summary (default output dir)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if path == "" {
				path = config.DefaultConfigFile
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "output file (default ./centival.yaml)")

	cmd.AddCommand(initCmd)
	return cmd
}
