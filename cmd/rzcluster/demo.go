package main

import (
	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TrevorS/cluster"
	"github.com/TrevorS/cluster/internal/synth"
)

func newDemoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Cluster a generated three-blob dataset with uniform noise",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := synth.New(a.v.GetUint64("seed"))
			set := synth.Concat(
				synth.ThreeBlobs(g, a.v.GetFloat64("stddev")),
				g.Noise(a.v.GetInt("noise"), 2, -10, 10),
			)
			a.log.Info("generated demo data", zap.Int("points", len(set.Points)))

			var engine cluster.Engine
			switch name := a.v.GetString("engine"); name {
			case "hdbscan":
				cfg := cluster.DefaultHDBSCANConfig()
				cfg.Workers = a.v.GetInt("workers")
				cfg.Logger = a.log
				engine = cluster.DensityBased{Config: cfg}
			case "kmeans":
				cfg := cluster.DefaultKMeansConfig(3)
				cfg.Seed = a.v.GetUint64("seed")
				cfg.Workers = a.v.GetInt("workers")
				cfg.Logger = a.log
				engine = cluster.Centroid{Config: cfg}
			case "gmm":
				cfg := cluster.DefaultGMMConfig(3)
				cfg.Seed = a.v.GetUint64("seed")
				cfg.Workers = a.v.GetInt("workers")
				cfg.Logger = a.log
				engine = cluster.Mixture{Config: cfg}
			default:
				return errors.Wrapf(cluster.ErrInvalidParameter, "unknown engine %q", name)
			}

			ds, err := cluster.NewDataset(set.Points)
			if err != nil {
				return err
			}
			res, err := engine.Fit(ds)
			if err != nil {
				return err
			}

			agree := agreement(set.Labels, res.Assignments)
			if a.v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), report{
					Engine:      string(engine.Kind()),
					Points:      ds.Len(),
					Clusters:    res.Clusters,
					Outliers:    res.Outliers,
					Assignments: res.Assignments,
					Details: map[string]any{
						"truth":     set.Labels,
						"agreement": agree,
					},
				})
			}
			if err := renderSummary(cmd.OutOrStdout(), string(engine.Kind()), res, "", nil); err != nil {
				return err
			}
			pterm.DefaultBasicText.WithWriter(cmd.OutOrStdout()).Printfln("pairwise agreement with ground truth: %.3f", agree)
			return nil
		},
	}

	f := cmd.Flags()
	f.String("engine", "hdbscan", "hdbscan, kmeans or gmm")
	f.Uint64("seed", 42, "random seed for data and engine")
	f.Float64("stddev", 0.5, "blob spread")
	f.Int("noise", 20, "uniform noise points in [-10, 10]^2")
	return cmd
}

// agreement is the Rand index between two labelings: the fraction of point
// pairs on which both agree about sharing a group. Label 0 counts as a
// group of its own in both.
func agreement(truth, got []int) float64 {
	n := len(truth)
	if n < 2 || len(got) != n {
		return 1
	}
	same, pairs := 0, 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if (truth[i] == truth[j]) == (got[i] == got[j]) {
				same++
			}
			pairs++
		}
	}
	return float64(same) / float64(pairs)
}
