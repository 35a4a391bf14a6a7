package orchestrator

import (
	"time"

	"svgod/pkg/types"
)

// Status builds a detailed status response for /status.
func (o *Orchestrator) Status() types.StatusResponse {
	st := o.ch.Stats()
	o.mu.Lock()
	defer o.mu.Unlock()
	return types.StatusResponse{
		State:            string(o.state),
		Document:         o.docName,
		WorkerPID:        st.PID,
		WorkerGeneration: st.Generation,
		PendingRequests:  st.Pending,
		CacheLen:         o.cache.Len(),
		CacheCap:         o.cache.Cap(),
		JobsTotal:        o.jobs,
		SupersededTotal:  o.superseded,
		CacheHits:        o.hits,
		CacheMisses:      o.misses,
		EvictionsTotal:   o.evictions,
		WorkerRestarts:   st.Restarts,
		LastError:        o.lastError,
		UptimeSeconds:    int64(time.Since(o.started).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
	}
}
