package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/TrevorS/cluster/embed"
)

func newReduceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce <points.csv|->",
		Short: "Project points onto their principal components",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd, args[0])
			if err != nil {
				return err
			}
			pca := embed.PCA{Seed: a.v.GetUint64("seed"), Logger: a.log}
			red, err := pca.Reduce(ds, a.v.GetInt("dims"), a.v.GetInt("sample"))
			if err != nil {
				return err
			}

			if a.v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), struct {
					Embeddings      [][]float64 `json:"embeddings"`
					OriginalIndices []int       `json:"original_indices"`
				}{red.Embeddings.Points(), red.OriginalIndices})
			}

			data := pterm.TableData{{"Index", "Embedding"}}
			for r, i := range red.OriginalIndices {
				data = append(data, []string{strconv.Itoa(i), formatVector(red.Embeddings.Row(r))})
			}
			return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render()
		},
	}

	f := cmd.Flags()
	f.Int("dims", 2, "output dimensions")
	f.Int("sample", 0, "reduce a random sample of this many points (0 = all)")
	f.Uint64("seed", 42, "random seed for sampling")
	return cmd
}
