// Package signal turns interrupt signals into a two-stage shutdown for
// release runs.
//
// The first SIGINT or SIGTERM only marks the run as interrupted: the
// coordinator notices between components and rolls back the local history it
// already created. The terminal delivers the same SIGINT to the running build
// process, so a long cargo build still stops promptly. A second signal cancels
// the context and ends the run wherever it is.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler listens for interrupt signals for the lifetime of a command.
type Handler struct {
	ctx         context.Context //nolint:containedctx // intentional: handler manages context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	done        chan struct{} // signals listen() to exit cleanly
	mu          sync.Mutex
	count       int
	stopOnce    sync.Once
	sigChan     chan os.Signal
	onInterrupt func()
}

// NewHandler creates a signal handler that listens for SIGINT and SIGTERM.
//
// Usage:
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	deps.Interrupted = h.IsInterrupted
//	result, err := coordinator.Run(h.Context(), req)
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		// Buffer of 1 ensures signal.Notify doesn't drop signals if handler is busy.
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// OnInterrupt registers a function called once, on the first signal.
// It must be set before signals can arrive.
func (h *Handler) OnInterrupt(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onInterrupt = fn
}

// Context returns the context that is canceled on the second signal or on Stop.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel that closes when the first signal is received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// IsInterrupted reports whether a signal has been received.
func (h *Handler) IsInterrupted() bool {
	select {
	case <-h.interrupted:
		return true
	default:
		return false
	}
}

// Stop cleans up the signal handler and stops listening for signals.
// Always call this when done to prevent resource leaks.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

// handleSignal processes a received signal.
func (h *Handler) handleSignal() {
	h.mu.Lock()
	h.count++
	count := h.count
	fn := h.onInterrupt
	h.mu.Unlock()

	switch count {
	case 1:
		close(h.interrupted)
		if fn != nil {
			fn()
		}
	case 2:
		h.cancel()
	}
}

// listen waits for signals until Stop() is called or the context ends.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case <-h.sigChan:
			h.handleSignal()
		}
	}
}
