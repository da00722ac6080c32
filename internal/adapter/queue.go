package adapter

import "log"

// queueDepth bounds how many eaten key events may be pending processing
// off the hook thread before the hook starts dropping them. The hook
// itself never blocks: Enqueue is a non-blocking send.
const queueDepth = 32

// Handler processes one classified, eaten key event. It runs off the hook
// thread; it may take as long as it needs (including calling into the
// async pipeline), since by the time it runs the hook has already
// returned its eat/pass decision.
type Handler func(Event)

// Adapter owns the work queue between the hook thread and the rest of the
// engine. Classify and Enqueue are the only two calls the hook thread
// makes; everything else happens on the worker goroutine Adapter starts.
type Adapter struct {
	queue  chan Event
	logger *log.Logger
}

// New starts an Adapter whose worker goroutine calls handle for every
// enqueued event, in order.
func New(handle Handler, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	a := &Adapter{queue: make(chan Event, queueDepth), logger: logger}
	go func() {
		for evt := range a.queue {
			handle(evt)
		}
	}()
	return a
}

// Enqueue submits evt for off-hook-thread processing. Never blocks: if
// the queue is saturated the event is dropped and logged, since the hook
// thread must never wait.
func (a *Adapter) Enqueue(evt Event) {
	select {
	case a.queue <- evt:
	default:
		a.logger.Printf("adapter: queue saturated, dropped event: kind=%d", evt.Kind)
	}
}

// Close stops accepting new events. The worker goroutine drains whatever
// remains queued, then exits.
func (a *Adapter) Close() {
	close(a.queue)
}
