package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/coldsim/internal/storage"
)

// PlotSeries renders the particle count and every metric of a stored run
// as ASCII graphs.
func PlotSeries(series *storage.Series, width, height int) string {
	if len(series.Times) == 0 {
		return ""
	}

	var b strings.Builder
	counts := make([]float64, len(series.Counts))
	for i, c := range series.Counts {
		counts[i] = float64(c)
	}
	b.WriteString(plot(counts, width, height, "particles vs step"))

	names := make([]string, 0, len(series.Metrics))
	for name := range series.Metrics {
		if name != "count" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString("\n\n")
		b.WriteString(plot(series.Metrics[name], width, height, fmt.Sprintf("%s vs step", name)))
	}
	return b.String()
}

func plot(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return caption + ": no data"
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
