package grayarch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
)

var (
	// ErrBusy is reported when a file is submitted while a conversion of
	// the same file is queued or running
	ErrBusy = errors.New("grayarch: file is already being processed")
	// ErrClosed is returned when submitting to a Queue that no longer
	// accepts work
	ErrClosed = errors.New("grayarch: queue closed")
)

// Status is a change in the state of a file. A Status with Processing set
// reports a conversion starting; otherwise the conversion has finished,
// successfully if Err is nil.
type Status struct {
	Path       string
	Direction  Direction
	Processing bool
	Message    string
	Output     string
	Err        error
}

type result struct {
	path   string
	dir    Direction
	output string
	err    error
}

// Queue runs conversions on a pool of workers. A single coordinator
// goroutine owns the state of every file; workers report back by message so
// no locking is needed, and at most one conversion per file is ever queued
// or running.
//
// Every Status sent on the channel returned by Status must be received for
// the queue to drain.
type Queue struct {
	g *Grayarch

	submit   chan string
	snapshot chan chan []File
	jobs     chan string
	results  <-chan result
	status   chan Status

	quit      chan struct{}
	closeOnce sync.Once
	stopped   chan struct{}
	finished  chan struct{}
}

// NewQueue starts a Queue with the configured number of workers. Cancelling
// ctx stops dispatching queued files, which are then reported as failed with
// the context error; conversions already running are not interrupted.
func (g *Grayarch) NewQueue(ctx context.Context) *Queue {
	q := &Queue{
		g:        g,
		submit:   make(chan string),
		snapshot: make(chan chan []File),
		jobs:     make(chan string),
		status:   make(chan Status),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
		finished: make(chan struct{}),
	}

	var resultcList []<-chan result
	for i := 0; i < g.jobs; i++ {
		resultcList = append(resultcList, q.conversionWorker(q.jobs))
	}
	q.results = mergeResults(resultcList...)

	go q.run(ctx)

	return q
}

func (q *Queue) conversionWorker(in <-chan string) <-chan result {
	out := make(chan result)
	go func() {
		defer close(out)
		for file := range in {
			dir, output, err := q.g.convert(file)
			out <- result{
				path:   file,
				dir:    dir,
				output: output,
				err:    err,
			}
		}
	}()
	return out
}

func mergeResults(cs ...<-chan result) <-chan result {
	var wg sync.WaitGroup
	out := make(chan result)
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan result) {
			for r := range c {
				out <- r
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Submit queues file for conversion. The outcome, including rejection of an
// unsupported or busy file, is reported on the Status channel.
func (q *Queue) Submit(ctx context.Context, file string) error {
	select {
	case q.submit <- file:
		return nil
	case <-q.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the queue accepting new files. Files already submitted are
// still converted, after which the Status channel is closed.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.quit)
	})
}

// Status returns the channel on which every change of file state is
// published in the order the coordinator applied it.
func (q *Queue) Status() <-chan Status {
	return q.status
}

// Files returns a snapshot of every file submitted so far, plus any output
// files produced, sorted by path.
func (q *Queue) Files(ctx context.Context) ([]File, error) {
	reply := make(chan []File, 1)
	select {
	case q.snapshot <- reply:
	case <-q.finished:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return <-reply, nil
}

// coordinator is the state owned by the run loop.
type coordinator struct {
	q        *Queue
	files    map[string]*File
	pending  []string
	inflight int
	outbox   []Status
}

func (c *coordinator) publish(s Status) {
	c.outbox = append(c.outbox, s)
}

func (c *coordinator) accept(file string) {
	path, err := filepath.Abs(file)
	if err != nil {
		c.publish(Status{Path: file, Message: err.Error(), Err: err})
		return
	}

	d, err := DirectionOf(path)
	if err != nil {
		c.q.g.logger.Printf("Rejecting \"%s\": %v\n", path, err)
		c.publish(Status{Path: path, Message: err.Error(), Err: err})
		return
	}

	f, ok := c.files[path]
	if !ok {
		f = newFile(path)
		c.files[path] = f
	}
	if f.Processing {
		c.publish(Status{Path: path, Direction: d, Message: ErrBusy.Error(), Err: ErrBusy})
		return
	}

	f.Processing = true
	f.Status = d.progress()
	c.pending = append(c.pending, path)

	c.q.g.logger.Printf("Queued \"%s\" for %s\n", path, d)
	c.publish(Status{Path: path, Direction: d, Processing: true, Message: f.Status})
}

func (c *coordinator) complete(r result) {
	s := Status{
		Path:      r.path,
		Direction: r.dir,
		Output:    r.output,
		Err:       r.err,
	}
	if r.err != nil {
		s.Message = r.err.Error()
		c.q.g.logger.Printf("Failed to %s \"%s\": %v\n", r.dir, r.path, r.err)
	} else {
		s.Message = r.dir.done()
		c.q.g.logger.Printf("Converted \"%s\" to \"%s\"\n", r.path, r.output)

		// The new file becomes part of the listing
		if f, ok := c.files[r.output]; ok {
			f.Size = newFile(r.output).Size
		} else {
			c.files[r.output] = newFile(r.output)
		}
	}

	if f, ok := c.files[r.path]; ok {
		f.Processing = false
		f.Status = s.Message
	}

	if h := c.q.g.history; h != nil {
		if _, err := h.Add(s); err != nil {
			c.q.g.logger.Printf("Unable to record \"%s\": %v\n", r.path, err)
		}
	}

	c.publish(s)
}

// cancel fails every file that hasn't been dispatched yet.
func (c *coordinator) cancel(err error) {
	for _, path := range c.pending {
		d, _ := DirectionOf(path)
		c.complete(result{path: path, dir: d, err: err})
	}
	c.pending = nil
}

func (c *coordinator) list() []File {
	files := make([]File, 0, len(c.files))
	for _, f := range c.files {
		files = append(files, *f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.finished)
	defer close(q.status)

	c := &coordinator{
		q:     q,
		files: make(map[string]*File),
	}

	submit, quit, done := q.submit, q.quit, ctx.Done()
	stop := func() {
		if submit != nil {
			close(q.stopped)
		}
		submit, quit = nil, nil
	}

	for submit != nil || len(c.pending) > 0 || c.inflight > 0 || len(c.outbox) > 0 {
		var jobs chan<- string
		var next string
		if len(c.pending) > 0 {
			jobs, next = q.jobs, c.pending[0]
		}

		var status chan<- Status
		var head Status
		if len(c.outbox) > 0 {
			status, head = q.status, c.outbox[0]
		}

		select {
		case file := <-submit:
			c.accept(file)
		case <-quit:
			stop()
		case <-done:
			stop()
			done = nil
			c.cancel(fmt.Errorf("grayarch: not started: %w", ctx.Err()))
		case reply := <-q.snapshot:
			reply <- c.list()
		case jobs <- next:
			c.pending = c.pending[1:]
			c.inflight++
		case r := <-q.results:
			c.inflight--
			c.complete(r)
		case status <- head:
			c.outbox = c.outbox[1:]
		}
	}

	close(q.jobs)
	for range q.results {
	}
}

// Convert converts every file and waits for all of them to finish. It
// returns the final Status of each file in completion order and an error if
// any of them failed.
func (g *Grayarch) Convert(ctx context.Context, files []string) ([]Status, error) {
	q := g.NewQueue(ctx)

	go func() {
		defer q.Close()
		for _, file := range files {
			if err := q.Submit(ctx, file); err != nil {
				return
			}
		}
	}()

	var statuses []Status
	var failed int
	for s := range q.Status() {
		if s.Processing {
			continue
		}
		if s.Err != nil {
			failed++
		}
		statuses = append(statuses, s)
	}

	if err := ctx.Err(); err != nil {
		return statuses, err
	}
	if failed > 0 {
		return statuses, fmt.Errorf("%d of %d conversions failed", failed, len(statuses))
	}
	return statuses, nil
}
