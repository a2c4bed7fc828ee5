package handler

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/bookshelf/bookshelf/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "bookshelf_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "bookshelf_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)

	causes := make([]string, 0, len(snap.AuthRejected))
	for cause := range snap.AuthRejected {
		causes = append(causes, cause)
	}
	slices.Sort(causes)
	for _, cause := range causes {
		writeMetric(w, "bookshelf_auth_rejected_total{cause=%q} %d\n", labelValue(cause), snap.AuthRejected[cause])
	}

	writeMetric(w, "bookshelf_sellers_registered_total %d\n", snap.SellersRegistered)
	writeMetric(w, "bookshelf_sellers_deleted_total %d\n", snap.SellersDeleted)

	writeMetric(w, "bookshelf_books_created_total %d\n", snap.BooksCreated)
	writeMetric(w, "bookshelf_books_updated_total %d\n", snap.BooksUpdated)
	writeMetric(w, "bookshelf_books_deleted_total %d\n", snap.BooksDeleted)

	writeMetric(w, "bookshelf_book_cache_hits_total %d\n", snap.BookCacheHits)
	writeMetric(w, "bookshelf_book_cache_misses_total %d\n", snap.BookCacheMisses)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// labelValue strips characters that would need escaping in a label.
func labelValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r == '\n' {
			return -1
		}
		return r
	}, s)
}
