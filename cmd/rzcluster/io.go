package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"

	"github.com/TrevorS/cluster"
)

// readPoints parses CSV rows of numbers into points. path "-" reads stdin.
func readPoints(path string, stdin io.Reader, header bool) ([][]float64, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		r = f
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var points [][]float64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read csv")
		}
		if header && line == 1 {
			continue
		}
		p := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.WithHint(
					errors.Wrapf(err, "row %d column %d", line, j+1),
					"pass --header if the first row holds column names",
				)
			}
			p[j] = v
		}
		points = append(points, p)
	}
	return points, nil
}

// report is the JSON form of a clustering result.
type report struct {
	Engine      string        `json:"engine"`
	Points      int           `json:"points"`
	Clusters    map[int][]int `json:"clusters"`
	Outliers    []int         `json:"outliers"`
	Assignments []int         `json:"assignments"`
	Details     any           `json:"details,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// row is one line of the cluster summary table: the cluster ID, its size,
// and an engine-specific description.
type row struct {
	id     int
	size   int
	detail string
}

func renderSummary(w io.Writer, engine string, res *cluster.Result, detailHeader string, detail func(id int) string) error {
	n := len(res.Assignments)
	pterm.DefaultSection.WithWriter(w).Printfln("%s: %d points, %d clusters, %d outliers",
		engine, n, res.NumClusters(), len(res.Outliers))

	data := pterm.TableData{{"Cluster", "Size", detailHeader}}
	for _, r := range summaryRows(res, detail) {
		data = append(data, []string{strconv.Itoa(r.id), strconv.Itoa(r.size), r.detail})
	}
	if len(res.Outliers) > 0 {
		data = append(data, []string{"noise", strconv.Itoa(len(res.Outliers)), ""})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

func summaryRows(res *cluster.Result, detail func(id int) string) []row {
	var rows []row
	for _, id := range res.ClusterIDs() {
		r := row{id: id, size: len(res.Clusters[id])}
		if detail != nil {
			r.detail = detail(id)
		}
		rows = append(rows, r)
	}
	return rows
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 3, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatFloat(x float64) string { return fmt.Sprintf("%.4g", x) }
