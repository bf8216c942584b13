package cli

import (
	"fmt"
	"io"

	"github.com/m-mizutani/cogmap/pkg/model"
	"github.com/m-mizutani/cogmap/pkg/usecase/session"
)

func printSearchResults(w io.Writer, results []*model.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintf(w, "No results found\n")
		return
	}

	fmt.Fprintf(w, "Top results:\n")
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s (id %d, similarity %.3f)\n", i+1, r.Text, r.ID, r.Score)
	}
}

func printStats(w io.Writer, sess *session.Session) {
	stats := sess.Stats()
	fmt.Fprintf(w, "\nStored vectors: %d\nDimension: %d\nMemory: %.2f MB\n",
		stats.Count, stats.Dimension, float64(stats.MemoryBytes)/(1024*1024))
}
