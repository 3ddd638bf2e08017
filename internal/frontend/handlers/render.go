package handlers

import (
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/tools"
	"github.com/cory-johannsen/chance/internal/frontend/telnet"
)

// prompt is the command-loop prompt.
const prompt = "> "

// RenderFrame formats a frame for a terminal. Idle frames render as "".
func RenderFrame(f tools.Frame) string {
	tag := telnet.Colorf(telnet.BrightBlack, "[%s]", f.Tool)
	switch f.Kind {
	case tools.FrameStart:
		return tag + " " + telnet.Colorize(telnet.Dim, f.Text+"...")
	case tools.FrameTick:
		return tag + " " + telnet.Colorize(telnet.Yellow, f.Text)
	case tools.FrameReveal:
		return tag + " " + telnet.Colorize(telnet.Bold+telnet.BrightGreen, "★ "+f.Text)
	case tools.FrameUpdate:
		return tag + " " + telnet.Colorize(telnet.Cyan, f.Text)
	default:
		return ""
	}
}

type queued struct {
	frame   tools.Frame
	flushed chan struct{}
}

// renderer writes tool frames to a connection from its own goroutine.
// OnFrame only appends to an unbounded queue, so tools never block on a
// slow client.
type renderer struct {
	conn   *telnet.Conn
	logger *zap.Logger

	mu     sync.Mutex
	queue  []queued
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newRenderer(conn *telnet.Conn, logger *zap.Logger) *renderer {
	r := &renderer{
		conn:   conn,
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// OnFrame implements tools.Observer.
func (r *renderer) OnFrame(f tools.Frame) {
	r.push(queued{frame: f})
}

// Flush blocks until every frame queued before the call is written.
func (r *renderer) Flush() {
	ch := make(chan struct{})
	if !r.push(queued{flushed: ch}) {
		return
	}
	<-ch
}

func (r *renderer) push(q queued) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	r.queue = append(r.queue, q)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
	return true
}

// Close drains the queue and stops the writer goroutine.
func (r *renderer) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
	<-r.done
}

func (r *renderer) run() {
	defer close(r.done)
	for {
		r.mu.Lock()
		batch := r.queue
		r.queue = nil
		closed := r.closed
		r.mu.Unlock()

		for i, q := range batch {
			if q.flushed != nil {
				close(q.flushed)
				continue
			}
			if superseded(batch, i) {
				continue
			}
			r.write(q.frame)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-r.wake
	}
}

// superseded reports whether batch[i] is a tick overwritten by the next
// frame before anything else was shown.
func superseded(batch []queued, i int) bool {
	f := batch[i].frame
	if f.Kind != tools.FrameTick || i+1 >= len(batch) {
		return false
	}
	next := batch[i+1]
	return next.flushed == nil && next.frame.Kind == tools.FrameTick && next.frame.Tool == f.Tool
}

func (r *renderer) write(f tools.Frame) {
	var err error
	switch f.Kind {
	case tools.FrameTick:
		err = r.conn.WriteStatus(RenderFrame(f))
	case tools.FrameIdle:
		err = r.conn.WritePrompt(prompt)
	default:
		err = r.conn.WriteLine(RenderFrame(f))
	}
	if err != nil {
		r.logger.Debug("writing frame",
			zap.String("tool", f.Tool),
			zap.Stringer("kind", f.Kind),
			zap.Error(err),
		)
	}
}
