package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/TrevorS/cluster"
)

func newHDBSCANCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hdbscan <points.csv|->",
		Short: "Density-based clustering with outlier detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd, args[0])
			if err != nil {
				return err
			}
			cfg, err := a.hdbscanConfig()
			if err != nil {
				return err
			}
			res, err := cluster.HDBSCANDataset(ds, cfg)
			if err != nil {
				return err
			}

			if a.v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), report{
					Engine:      "hdbscan",
					Points:      ds.Len(),
					Clusters:    res.Clusters,
					Outliers:    res.Outliers,
					Assignments: res.Assignments,
					Details: map[string]any{
						"probabilities":  res.Probabilities,
						"outlier_scores": res.OutlierScores,
						"stabilities":    res.Stabilities,
					},
				})
			}
			return renderSummary(cmd.OutOrStdout(), "hdbscan", &res.Result, "Stability", func(id int) string {
				return formatFloat(res.Stabilities[id])
			})
		},
	}

	f := cmd.Flags()
	f.Int("min-cluster-size", 5, "smallest group counted as a cluster")
	f.Int("min-samples", 0, "neighbor rank for core distances (0 = min-cluster-size)")
	f.Float64("epsilon", 1e-4, "distance below which clusters are not split (0 disables)")
	f.Float64("alpha", 1.0, "core distance scale")
	f.String("metric", "euclidean", "euclidean, manhattan, chebyshev, minkowski or cosine")
	f.Float64("p", 3, "Minkowski exponent (>= 1), used with --metric minkowski")
	f.String("selection", string(cluster.SelectEOM), "cluster selection: eom or leaf")
	f.String("algorithm", string(cluster.AlgorithmAuto), "auto, brute, boruvka_brute, prims_kdtree, boruvka_kdtree, prims_balltree or boruvka_balltree")
	return cmd
}

func (a *app) hdbscanConfig() (cluster.HDBSCANConfig, error) {
	metric, err := parseMetric(a.v.GetString("metric"), a.v.GetFloat64("p"))
	if err != nil {
		return cluster.HDBSCANConfig{}, err
	}
	cfg := cluster.DefaultHDBSCANConfig()
	cfg.MinClusterSize = a.v.GetInt("min-cluster-size")
	cfg.MinSamples = a.v.GetInt("min-samples")
	cfg.ClusterSelectionEpsilon = a.v.GetFloat64("epsilon")
	cfg.Alpha = a.v.GetFloat64("alpha")
	cfg.Metric = metric
	cfg.ClusterSelectionMethod = cluster.SelectionMethod(a.v.GetString("selection"))
	cfg.Algorithm = cluster.Algorithm(a.v.GetString("algorithm"))
	cfg.Workers = a.v.GetInt("workers")
	cfg.Logger = a.log
	return cfg, nil
}

func parseMetric(name string, p float64) (cluster.Metric, error) {
	switch name {
	case "", "euclidean":
		return cluster.EuclideanMetric{}, nil
	case "manhattan":
		return cluster.ManhattanMetric{}, nil
	case "chebyshev":
		return cluster.ChebyshevMetric{}, nil
	case "minkowski":
		return cluster.MinkowskiMetric{P: p}, nil
	case "cosine":
		return cluster.CosineMetric{}, nil
	}
	return nil, errors.Wrapf(cluster.ErrInvalidParameter, "unknown metric %q", name)
}

func newKMeansCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kmeans <points.csv|->",
		Short: "Lloyd's k-means with k-means++ seeding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd, args[0])
			if err != nil {
				return err
			}
			cfg := cluster.DefaultKMeansConfig(a.v.GetInt("clusters"))
			cfg.MaxIterations = a.v.GetInt("max-iterations")
			cfg.Tolerance = a.v.GetFloat64("tolerance")
			cfg.Seed = a.v.GetUint64("seed")
			cfg.Workers = a.v.GetInt("workers")
			cfg.Logger = a.log

			res, err := cluster.KMeansDataset(ds, cfg)
			if err != nil {
				return err
			}

			if a.v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), report{
					Engine:      "kmeans",
					Points:      ds.Len(),
					Clusters:    res.Clusters,
					Outliers:    res.Outliers,
					Assignments: res.Assignments,
					Details: map[string]any{
						"centroids":     res.Centroids,
						"inertia":       res.Inertia,
						"iterations":    res.Iterations,
						"converged":     res.Converged,
						"inertia_trace": res.InertiaTrace,
					},
				})
			}
			return renderSummary(cmd.OutOrStdout(), "kmeans", &res.Result, "Centroid", func(id int) string {
				return formatVector(res.Centroids[id-1])
			})
		},
	}

	f := cmd.Flags()
	f.IntP("clusters", "k", 3, "number of clusters")
	f.Int("max-iterations", 100, "iteration cap")
	f.Float64("tolerance", 1e-4, "largest centroid move that counts as converged")
	f.Uint64("seed", 42, "random seed")
	return cmd
}

func newGMMCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gmm <points.csv|->",
		Short: "Gaussian mixture fitted by EM with restarts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd, args[0])
			if err != nil {
				return err
			}
			cfg := cluster.DefaultGMMConfig(a.v.GetInt("clusters"))
			cfg.NRuns = a.v.GetInt("runs")
			cfg.MaxIterations = a.v.GetInt("max-iterations")
			cfg.Tolerance = a.v.GetFloat64("tolerance")
			cfg.RegCovar = a.v.GetFloat64("reg-covar")
			cfg.Seed = a.v.GetUint64("seed")
			cfg.Workers = a.v.GetInt("workers")
			cfg.Logger = a.log

			res, err := cluster.GMMDataset(ds, cfg)
			if err != nil {
				return err
			}

			if a.v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), report{
					Engine:      "gmm",
					Points:      ds.Len(),
					Clusters:    res.Clusters,
					Outliers:    res.Outliers,
					Assignments: res.Assignments,
					Details: map[string]any{
						"weights":        res.Weights,
						"means":          res.Means,
						"covariances":    res.Covariances,
						"log_likelihood": res.LogLikelihood,
						"best_run":       res.BestRun,
						"converged":      res.Converged,
					},
				})
			}
			return renderSummary(cmd.OutOrStdout(), "gmm", &res.Result, "Weight / Mean", func(id int) string {
				return formatFloat(res.Weights[id-1]) + " " + formatVector(res.Means[id-1])
			})
		},
	}

	f := cmd.Flags()
	f.IntP("clusters", "k", 3, "number of mixture components")
	f.Int("runs", 10, "independent EM restarts")
	f.Int("max-iterations", 100, "EM iteration cap per run")
	f.Float64("tolerance", 1e-4, "log-likelihood change that counts as converged")
	f.Float64("reg-covar", 1e-6, "value added to covariance diagonals")
	f.Uint64("seed", 42, "random seed")
	return cmd
}

func (a *app) loadDataset(cmd *cobra.Command, path string) (*cluster.Dataset, error) {
	points, err := readPoints(path, cmd.InOrStdin(), a.v.GetBool("header"))
	if err != nil {
		return nil, err
	}
	return cluster.NewDataset(points)
}
