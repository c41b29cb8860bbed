package http

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/geokshitij/flowData/internal/domain"
)

// maxPendingJobs caps the registry so jobs that are submitted but never
// consumed cannot grow the map without bound. When full, the oldest pending
// job is evicted; its events URL then answers 404 like any consumed id.
const maxPendingJobs = 256

// jobRegistry holds submitted jobs until their event stream is opened.
// A job is consumable exactly once: Take removes it, so reconnecting to a
// consumed stream yields 404 rather than a silent re-run.
type jobRegistry struct {
	mu    sync.Mutex
	jobs  map[string]domain.Job
	order []string // insertion order, oldest first
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]domain.Job)}
}

func (r *jobRegistry) Add(job domain.Job) string {
	b := make([]byte, 8)
	rand.Read(b) //nolint:errcheck // crypto/rand.Read never fails
	id := hex.EncodeToString(b)

	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.jobs) >= maxPendingJobs {
		r.evictOldestLocked()
	}
	r.jobs[id] = job
	r.order = append(r.order, id)
	return id
}

// evictOldestLocked drops the oldest still-pending job. Ids already taken
// leave stale order entries behind; those are skipped here.
func (r *jobRegistry) evictOldestLocked() {
	for len(r.order) > 0 {
		oldest := r.order[0]
		r.order = r.order[1:]
		if _, ok := r.jobs[oldest]; ok {
			delete(r.jobs, oldest)
			return
		}
	}
}

func (r *jobRegistry) Take(id string) (domain.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if ok {
		delete(r.jobs, id)
	}
	return job, ok
}
