// Package engine hosts emulation cores behind the emucore.Engine interface.
package engine

import (
	"context"
	"errors"
	"sync"

	emucore "github.com/user-none/snesfront/api"
)

// ErrClosed is returned by Step after the worker was closed.
var ErrClosed = errors.New("engine closed")

type stepRequest struct {
	input emucore.Input
	reply chan stepReply
}

type stepReply struct {
	res emucore.FrameResult
	err error
}

// Worker runs a synchronous core on its own goroutine. Step calls are
// serialized through a request channel, so the core is only ever touched by
// the worker goroutine. The caller can stop waiting through ctx; the core
// still finishes the frame it started.
type Worker struct {
	core     emucore.Engine
	requests chan stepRequest
	quit     chan struct{}
	done     chan struct{}
	once     sync.Once
	closeErr error
}

// NewWorker starts a worker goroutine driving core. The worker owns core
// and closes it on Close.
func NewWorker(core emucore.Engine) *Worker {
	w := &Worker{
		core:     core,
		requests: make(chan stepRequest),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case req := <-w.requests:
			res, err := w.core.Step(context.Background(), req.input)
			// Buffered so an abandoned caller never stalls the loop.
			req.reply <- stepReply{res: res, err: err}
		}
	}
}

// Step implements emucore.Engine.
func (w *Worker) Step(ctx context.Context, in emucore.Input) (emucore.FrameResult, error) {
	req := stepRequest{input: in, reply: make(chan stepReply, 1)}

	select {
	case w.requests <- req:
	case <-w.quit:
		return emucore.FrameResult{}, ErrClosed
	case <-ctx.Done():
		return emucore.FrameResult{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.res, r.err
	case <-ctx.Done():
		return emucore.FrameResult{}, ctx.Err()
	}
}

// Close stops the worker goroutine after any running frame and closes the
// core.
func (w *Worker) Close() error {
	w.once.Do(func() {
		close(w.quit)
		<-w.done
		w.closeErr = w.core.Close()
	})
	return w.closeErr
}
