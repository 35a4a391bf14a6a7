package worker

import (
	"context"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"svgod/pkg/types"
)

type result struct {
	payload *types.WorkerResult
	err     error
}

// Channel is a bidirectional request/response transport to one worker
// process. It assigns monotonically increasing request ids, correlates
// response lines back to waiting callers, and replaces the whole worker
// generation on abort so no stale state can leak into later requests.
//
// Ids are never reused while a Channel is alive, including across
// generations, so a response from a terminated generation can never resolve
// an entry created after the swap (the pending table is also swept before
// the next generation accepts sends).
type Channel struct {
	engine Engine
	log    zerolog.Logger

	mu       sync.Mutex
	nextID   uint64
	pending  map[uint64]chan result
	gen      Generation
	genSeq   uint64
	restarts uint64
	released bool
}

func NewChannel(e Engine, log zerolog.Logger) *Channel {
	return &Channel{
		engine:  e,
		log:     log,
		pending: make(map[uint64]chan result),
	}
}

// Send posts one request and blocks for its correlated response. The worker
// generation is started lazily on first use. Failure modes: *WorkerError if
// the worker reports an error or dies mid-request, ErrAborted if AbortAll
// supersedes the request, ctx.Err() on caller cancellation.
func (c *Channel) Send(ctx context.Context, action types.WorkerAction, settings *types.Settings, data string) (*types.WorkerResult, error) {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil, ErrReleased
	}
	if c.gen == nil {
		if err := c.startGenLocked(); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}
	c.nextID++
	id := c.nextID
	ch := make(chan result, 1)
	c.pending[id] = ch
	gen := c.gen
	c.mu.Unlock()

	line, err := json.Marshal(types.WorkerRequest{ID: id, Action: action, Settings: settings, Data: data})
	if err != nil {
		c.forget(id)
		return nil, err
	}
	if err := gen.Send(append(line, '\n')); err != nil {
		c.forget(id)
		// AbortAll can sweep the entry while the write is failing (Stop
		// closes stdin under the writer). The entry's settlement is the
		// truth then: the job was superseded, not broken.
		select {
		case res := <-ch:
			if res.err != nil {
				return nil, res.err
			}
			return res.payload, nil
		default:
		}
		return nil, &WorkerError{ID: id, Msg: "write request: " + err.Error()}
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return res.payload, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

// AbortAll fails every pending request with ErrAborted, discards the current
// worker generation, and starts a fresh one so subsequent sends go straight
// through. With nothing pending it is a no-op: no restart, no error.
//
// Rejections are delivered before AbortAll returns; abort cannot stop work
// already running inside the worker, it only refuses to honor its response.
func (c *Channel) AbortAll() {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}
	for id, ch := range c.pending {
		ch <- result{err: ErrAborted}
		delete(c.pending, id)
	}
	gen := c.gen
	c.gen = nil
	c.restarts++
	c.mu.Unlock()

	if gen != nil {
		_ = gen.Stop()
	}

	c.mu.Lock()
	if !c.released && c.gen == nil {
		if err := c.startGenLocked(); err != nil {
			// Leave gen nil; the next Send retries the spawn.
			c.log.Error().Err(err).Msg("worker restart after abort failed")
		}
	}
	c.mu.Unlock()
}

// Release aborts all pending requests and terminates the worker generation
// without starting a new one. The Channel is unusable afterward.
func (c *Channel) Release() {
	c.mu.Lock()
	c.released = true
	for id, ch := range c.pending {
		ch <- result{err: ErrAborted}
		delete(c.pending, id)
	}
	gen := c.gen
	c.gen = nil
	c.mu.Unlock()
	if gen != nil {
		_ = gen.Stop()
	}
}

// Stats is a read-only view for /status.
type Stats struct {
	Pending    int
	Generation uint64
	PID        int
	Restarts   uint64
}

func (c *Channel) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Pending: len(c.pending), Generation: c.genSeq, Restarts: c.restarts}
	if c.gen != nil {
		s.PID = c.gen.PID()
	}
	return s
}

func (c *Channel) startGenLocked() error {
	gen, err := c.engine.Start()
	if err != nil {
		return err
	}
	c.genSeq++
	c.gen = gen
	go c.readLoop(gen)
	return nil
}

func (c *Channel) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// readLoop drains one generation's responses. It exits when the generation
// dies; if that generation is still current, its pending requests fail so no
// caller is left hanging.
func (c *Channel) readLoop(gen Generation) {
	for {
		line, err := gen.Recv()
		if err != nil {
			c.sweepDeadGen(gen, err)
			return
		}
		var resp types.WorkerResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			c.log.Warn().Err(err).Msg("worker: dropping undecodable message")
			continue
		}
		if resp.ID == 0 {
			c.log.Warn().Msg("worker: dropping message without request id")
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()
		if !ok {
			c.log.Warn().Uint64("id", resp.ID).Msg("worker: dropping response for unknown request")
			continue
		}
		switch {
		case resp.Error != "":
			// Error takes precedence even if a result is also present.
			ch <- result{err: &WorkerError{ID: resp.ID, Msg: resp.Error}}
		case resp.Result == nil:
			ch <- result{err: &WorkerError{ID: resp.ID, Msg: "response carried neither result nor error"}}
		default:
			ch <- result{payload: resp.Result}
		}
	}
}

func (c *Channel) sweepDeadGen(gen Generation, cause error) {
	c.mu.Lock()
	if c.gen != gen {
		// Already swapped out by AbortAll/Release; its entries were swept.
		c.mu.Unlock()
		return
	}
	c.gen = nil
	swept := 0
	for id, ch := range c.pending {
		ch <- result{err: &WorkerError{ID: id, Msg: cause.Error()}}
		delete(c.pending, id)
		swept++
	}
	c.mu.Unlock()
	if swept > 0 {
		c.log.Error().Err(cause).Int("pending", swept).Msg("worker generation died with requests in flight")
	}
}
