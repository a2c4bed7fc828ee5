package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(success bool) {}

// IncAuthRejected is a no-op.
func (n *NoopRecorder) IncAuthRejected(cause string) {}

// IncSellerRegistered is a no-op.
func (n *NoopRecorder) IncSellerRegistered() {}

// IncSellerDeleted is a no-op.
func (n *NoopRecorder) IncSellerDeleted() {}

// IncBookCreated is a no-op.
func (n *NoopRecorder) IncBookCreated() {}

// IncBookUpdated is a no-op.
func (n *NoopRecorder) IncBookUpdated() {}

// IncBookDeleted is a no-op.
func (n *NoopRecorder) IncBookDeleted() {}

// IncBookCacheHit is a no-op.
func (n *NoopRecorder) IncBookCacheHit() {}

// IncBookCacheMiss is a no-op.
func (n *NoopRecorder) IncBookCacheMiss() {}
