package main

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries the state shared by every subcommand.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "rzcluster",
		Short: "Cluster numeric point data",
		Long: `rzcluster groups unlabeled points read from CSV (one point per row) and
flags points that belong to no cluster.

Engines:
  hdbscan  - density-based clustering with outlier detection
  kmeans   - Lloyd's k-means with k-means++ seeding
  gmm      - Gaussian mixture fitted by EM with restarts

Helpers:
  demo     - cluster a generated three-blob dataset
  reduce   - project points onto their principal components

Every flag can also be set in a config file (--config) or through an
environment variable such as RZCLUSTER_MIN_CLUSTER_SIZE.

Examples:
  rzcluster hdbscan points.csv --min-cluster-size 10
  rzcluster kmeans points.csv -k 3 --json
  cat points.csv | rzcluster gmm - -k 4 --runs 20`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (TOML or YAML)")
	pf.Bool("json", false, "write the result as JSON")
	pf.Bool("log-json", false, "emit logs as JSON")
	pf.CountP("verbose", "v", "increase log verbosity (-v info, -vv debug)")
	pf.Bool("header", false, "skip the first CSV row")
	pf.Int("workers", 0, "goroutines for parallel stages (0 = one per CPU)")

	root.AddCommand(
		newHDBSCANCmd(a),
		newKMeansCmd(a),
		newGMMCmd(a),
		newDemoCmd(a),
		newReduceCmd(a),
	)
	return root
}

// init loads configuration and builds the logger before a subcommand runs.
// Precedence, lowest first: config file, environment, flags.
func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("RZCLUSTER")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := a.v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = errors.Wrapf(err, "bind flag %s", f.Name)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", path)
		}
	}

	log, err := newLogger(a.v.GetBool("log-json"), a.v.GetInt("verbose"))
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	a.log = log
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("loaded config", zap.String("file", used))
	}
	return nil
}

// newLogger builds a console logger for humans or a JSON logger for
// machines. Warnings are always shown; -v adds info and -vv debug.
func newLogger(jsonOutput bool, verbosity int) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	switch {
	case verbosity >= 2:
		level = zapcore.DebugLevel
	case verbosity == 1:
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
