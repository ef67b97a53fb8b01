package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/openmined/assetextract/internal/assets"
	"github.com/openmined/assetextract/internal/config"
	"github.com/openmined/assetextract/internal/logging"
	"github.com/openmined/assetextract/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configSearchPaths = config.SearchPaths

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "assetextract <mcfolder>",
		Short: "Extract assets from a hashed object store",
		Long: `Extracts content-addressed assets into a readable directory tree.

<mcfolder> must contain assets/indexes and assets/objects (e.g. ~/.minecraft).`,
		Version:       version.Detailed(),
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromViper(v, args[0])
			if err := cfg.Validate(); err != nil {
				return err
			}
			filters, err := cfg.Filters()
			if err != nil {
				return err
			}

			cmd.SilenceUsage = true

			logger, closeLog, err := logging.New(logging.Options{
				Verbosity: cfg.Verbosity,
				Quiet:     cfg.Quiet,
				Console:   cmd.ErrOrStderr(),
				FilePath:  cfg.LogFile,
			})
			if err != nil {
				return fmt.Errorf("log file: %w", err)
			}
			defer closeLog()

			return run(cmd, cfg, filters, logger)
		},
	}

	flags := rootCmd.Flags()
	flags.SortFlags = false
	flags.StringP("table", "t", config.DefaultTable, "Version of table to read, a name in assets/indexes or a path")
	flags.StringP("output", "o", config.DefaultOutput, "Folder to write files to")
	flags.BoolP("list", "l", false, "List the files in the table instead of copying")
	flags.String("format", string(assets.FormatText), "List format: text, json or yaml")
	flags.StringP("regex", "r", "", "Regular expression the whole logical path must match")
	flags.StringP("glob", "g", "", "Glob of files to write (eg. minecraft/**/*.ogg)")
	flags.StringArray("exclude", nil, "Gitignore-style pattern of files to skip (repeatable)")
	flags.String("exclude-from", "", "File of gitignore-style patterns of files to skip")
	flags.CountP("verbose", "v", "Increase log level (-v info, -vv debug)")
	flags.BoolP("quiet", "q", false, "Only output errors, not warnings")
	flags.String("log-file", "", "Also write logs to this file")
	flags.Bool("no-preserve-times", false, "Do not copy object modification times")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (json or yaml)")

	rootCmd.MarkFlagsMutuallyExclusive("output", "list")
	rootCmd.MarkFlagsMutuallyExclusive("regex", "glob")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func loadConfig(cmd *cobra.Command, v *viper.Viper) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		for _, p := range configSearchPaths {
			v.AddConfigPath(p)
		}
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("%w: config read '%s': %w", config.ErrConfig, v.ConfigFileUsed(), err)
		}
	}

	bindings := map[string]string{
		"table":             "table",
		"output":            "output",
		"list":              "list",
		"format":            "format",
		"regex":             "regex",
		"glob":              "glob",
		"exclude":           "exclude",
		"exclude_from":      "exclude-from",
		"verbose":           "verbose",
		"quiet":             "quiet",
		"log_file":          "log-file",
		"no_preserve_times": "no-preserve-times",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()

	return nil
}

func configFromViper(v *viper.Viper, root string) *config.Config {
	cfg := &config.Config{
		Root:          root,
		Table:         v.GetString("table"),
		List:          v.GetBool("list"),
		Format:        v.GetString("format"),
		Regex:         v.GetString("regex"),
		Glob:          v.GetString("glob"),
		Exclude:       v.GetStringSlice("exclude"),
		ExcludeFrom:   v.GetString("exclude_from"),
		Verbosity:     v.GetInt("verbose"),
		Quiet:         v.GetBool("quiet"),
		LogFile:       v.GetString("log_file"),
		PreserveTimes: !v.GetBool("no_preserve_times"),
	}
	// the flag default must not count as an explicit --output next to --list
	if v.IsSet("output") {
		cfg.Output = v.GetString("output")
	}
	return cfg
}

func run(cmd *cobra.Command, cfg *config.Config, filters []assets.Filter, logger *slog.Logger) error {
	store, err := assets.OpenStore(cfg.Root)
	if err != nil {
		return err
	}

	indexPath, err := store.ResolveIndex(cfg.TableSelector(), logger)
	if err != nil {
		return err
	}
	logger.Info("JSON file found: " + indexPath)

	idx, err := assets.LoadIndex(indexPath, logger)
	if err != nil {
		return err
	}

	entries := assets.Select(idx, filters, logger)

	if cfg.List {
		logger.Info(fmt.Sprintf("Listing %d items", len(entries)))
		return assets.List(cmd.OutOrStdout(), entries, cfg.ListFormat(), logger)
	}

	extractor, err := assets.NewExtractor(store, cfg.OutputDir(), assets.ExtractOptions{PreserveTimes: cfg.PreserveTimes}, logger)
	if err != nil {
		return err
	}

	report, err := extractor.Extract(cmd.Context(), entries)
	if report != nil && report.Missing+report.Malformed+report.Failed > 0 {
		logger.Warn("some entries were not extracted",
			"missing", report.Missing,
			"malformed", report.Malformed,
			"failed", report.Failed,
		)
	}
	if err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("Extracted %d of %d items (%s) to %s",
		report.Written(), report.Processed(), humanize.Bytes(uint64(report.Bytes)), extractor.OutputDir()))
	return nil
}
