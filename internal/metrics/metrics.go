// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncLogin(success bool)
	IncAuthRejected(cause string)

	// Seller metrics
	IncSellerRegistered()
	IncSellerDeleted()

	// Book metrics
	IncBookCreated()
	IncBookUpdated()
	IncBookDeleted()
	IncBookCacheHit()
	IncBookCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
