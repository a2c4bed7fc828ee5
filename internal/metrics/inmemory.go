package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginsSucceeded   uint64
	LoginsFailed      uint64
	AuthRejected      map[string]uint64 // by cause
	SellersRegistered uint64
	SellersDeleted    uint64
	BooksCreated      uint64
	BooksUpdated      uint64
	BooksDeleted      uint64
	BookCacheHits     uint64
	BookCacheMisses   uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	loginsSucceeded   uint64
	loginsFailed      uint64
	sellersRegistered uint64
	sellersDeleted    uint64
	booksCreated      uint64
	booksUpdated      uint64
	booksDeleted      uint64
	bookCacheHits     uint64
	bookCacheMisses   uint64

	mu           sync.Mutex
	authRejected map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{authRejected: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	rejected := maps.Clone(m.authRejected)
	m.mu.Unlock()

	return Snapshot{
		LoginsSucceeded:   atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:      atomic.LoadUint64(&m.loginsFailed),
		AuthRejected:      rejected,
		SellersRegistered: atomic.LoadUint64(&m.sellersRegistered),
		SellersDeleted:    atomic.LoadUint64(&m.sellersDeleted),
		BooksCreated:      atomic.LoadUint64(&m.booksCreated),
		BooksUpdated:      atomic.LoadUint64(&m.booksUpdated),
		BooksDeleted:      atomic.LoadUint64(&m.booksDeleted),
		BookCacheHits:     atomic.LoadUint64(&m.bookCacheHits),
		BookCacheMisses:   atomic.LoadUint64(&m.bookCacheMisses),
	}
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(success bool) {
	if success {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncAuthRejected counts a rejected bearer token by cause.
func (m *InMemoryRecorder) IncAuthRejected(cause string) {
	m.mu.Lock()
	m.authRejected[cause]++
	m.mu.Unlock()
}

// IncSellerRegistered increments seller registered counter.
func (m *InMemoryRecorder) IncSellerRegistered() {
	atomic.AddUint64(&m.sellersRegistered, 1)
}

// IncSellerDeleted increments seller deleted counter.
func (m *InMemoryRecorder) IncSellerDeleted() {
	atomic.AddUint64(&m.sellersDeleted, 1)
}

// IncBookCreated increments book created counter.
func (m *InMemoryRecorder) IncBookCreated() {
	atomic.AddUint64(&m.booksCreated, 1)
}

// IncBookUpdated increments book updated counter.
func (m *InMemoryRecorder) IncBookUpdated() {
	atomic.AddUint64(&m.booksUpdated, 1)
}

// IncBookDeleted increments book deleted counter.
func (m *InMemoryRecorder) IncBookDeleted() {
	atomic.AddUint64(&m.booksDeleted, 1)
}

// IncBookCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncBookCacheHit() {
	atomic.AddUint64(&m.bookCacheHits, 1)
}

// IncBookCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncBookCacheMiss() {
	atomic.AddUint64(&m.bookCacheMisses, 1)
}
