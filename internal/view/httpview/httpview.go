// Package httpview implements view.View over Server-Sent Events, standing
// in for the native candidate-window renderer spec.md treats as an
// external collaborator. Every Update/ShowAt/Hide call is broadcast as a
// JSON event to every connected client; it is a debug/demo transport, not
// a replacement for a real OS-level candidate window.
package httpview

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/aipinyin/engine/internal/types"
)

// event is the JSON shape pushed to every connected client.
type event struct {
	Kind       string             `json:"kind"`
	Raw        string             `json:"raw,omitempty"`
	Candidates []candidateJSON    `json:"candidates,omitempty"`
	Page       *types.Page        `json:"page,omitempty"`
	X          int                `json:"x,omitempty"`
	Y          int                `json:"y,omitempty"`
}

type candidateJSON struct {
	Word   string `json:"word"`
	Weight uint32 `json:"weight"`
}

// View broadcasts (raw, candidates, page) tuples to SSE subscribers and
// also exposes a chi.Router that serves the SSE stream plus a health
// endpoint. A real candidate window would not need a transport at all;
// this one exists because the engine's actual renderer is out of scope
// (spec.md §1) and a demo/debug surface still needs one.
type View struct {
	mu          sync.Mutex
	subscribers map[chan event]struct{}
	logger      *log.Logger
}

// New builds an empty View with no subscribers yet.
func New(logger *log.Logger) *View {
	if logger == nil {
		logger = log.Default()
	}
	return &View{subscribers: make(map[chan event]struct{}), logger: logger}
}

func (v *View) Update(raw string, candidates []types.Candidate, page types.Page) {
	cs := make([]candidateJSON, len(candidates))
	for i, c := range candidates {
		cs[i] = candidateJSON{Word: c.Word, Weight: c.Weight}
	}
	p := page
	v.broadcast(event{Kind: "update", Raw: raw, Candidates: cs, Page: &p})
}

func (v *View) ShowAt(x, y int) {
	v.broadcast(event{Kind: "show_at", X: x, Y: y})
}

func (v *View) Hide() {
	v.broadcast(event{Kind: "hide"})
}

func (v *View) broadcast(e event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for ch := range v.subscribers {
		select {
		case ch <- e:
		default:
			v.logger.Printf("httpview: subscriber channel saturated, dropping event kind=%s", e.Kind)
		}
	}
}

func (v *View) subscribe() chan event {
	ch := make(chan event, 16)
	v.mu.Lock()
	v.subscribers[ch] = struct{}{}
	v.mu.Unlock()
	return ch
}

func (v *View) unsubscribe(ch chan event) {
	v.mu.Lock()
	delete(v.subscribers, ch)
	v.mu.Unlock()
	close(ch)
}

// Router builds the HTTP router serving this view's SSE stream.
func (v *View) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/health", v.handleHealth)
	r.Get("/events", v.handleEvents)
	return r
}

func (v *View) handleHealth(w http.ResponseWriter, r *http.Request) {
	v.mu.Lock()
	subscribers := len(v.subscribers)
	v.mu.Unlock()

	body, err := sjson.Set("", "status", "ok")
	if err == nil {
		body, err = sjson.Set(body, "subscribers", subscribers)
	}
	if err != nil {
		http.Error(w, "health encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (v *View) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	connID := uuid.NewString()
	v.logger.Printf("httpview: connection %s subscribed from %s", connID, r.RemoteAddr)

	ch := v.subscribe()
	defer func() {
		v.unsubscribe(ch)
		v.logger.Printf("httpview: connection %s closed", connID)
	}()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-ch:
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(data); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
