// Package httpapi is CascadeLang's post-run debug/introspection surface:
// a small read-only HTTP server over a single immutable heap snapshot,
// started by `cascadelang serve` after the target program has already run
// to completion (spec.md §5, §4.11). It never holds a reference to the
// live, mutation-capable *graph.Heap, so it introduces no concurrent
// mutation of language runtime state even though net/http runs it on its
// own goroutines.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/websocket"

	"github.com/caivega/cascadelang/graph"
)

// Report is the frozen result of one completed run: the snapshot taken
// immediately after evaluation finished, plus its event log and registered
// type schemas, all gathered once before the server starts.
type Report struct {
	Snapshot  []graph.ObjectSnapshot
	Events    []graph.CascadeEvent
	TypeNames []string
}

// AuthCreds is an optional HTTP Basic Auth credential pair, verified with
// bcrypt. A nil AuthCreds leaves the server open.
type AuthCreds struct {
	User         string
	BcryptedPass []byte
}

// Server wires Report onto an httprouter.Router. Every handler reads only
// the frozen Report; none can reach back into a live heap.
type Server struct {
	report  Report
	auth    *AuthCreds
	metrics *Metrics
	router  *httprouter.Router
}

// New builds a Server ready to Handler()-mount or ListenAndServe.
func New(report Report, auth *AuthCreds) *Server {
	s := &Server{report: report, auth: auth, metrics: NewMetrics()}
	s.metrics.Observe(report)

	r := httprouter.New()
	r.GET("/snapshot", s.wrap(s.handleSnapshot))
	r.GET("/events", s.wrap(s.handleEvents))
	r.GET("/events.ws", s.handleEventsWS) // websocket upgrade: auth checked inside
	r.GET("/metrics", s.wrap(s.handleMetrics))
	r.GET("/", s.handleViewer)
	s.router = r
	return s
}

// Handler returns the server's http.Handler, e.g. for httptest.Server.
func (s *Server) Handler() http.Handler { return s.router }

// wrap applies Basic Auth (if configured) in front of an httprouter handle.
func (s *Server) wrap(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !s.checkAuth(w, r) {
			return
		}
		h(w, r, ps)
	}
}

func (s *Server) checkAuth(w http.ResponseWriter, r *http.Request) bool {
	if s.auth == nil {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok || user != s.auth.User || bcrypt.CompareHashAndPassword(s.auth.BcryptedPass, []byte(pass)) != nil {
		w.Header().Set("WWW-Authenticate", `Basic realm="cascadelang"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

type snapshotField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type snapshotWire struct {
	ID           uint64              `json:"id"`
	Type         string              `json:"type"`
	HasType      bool                `json:"hasType"`
	Fields       map[string]string   `json:"fields"`
	ReverseEdges []reverseEdgeWire   `json:"reverseEdges"`
}

type reverseEdgeWire struct {
	Parent uint64 `json:"parent"`
	Field  string `json:"field"`
}

func toWireSnapshot(snap []graph.ObjectSnapshot) []snapshotWire {
	out := make([]snapshotWire, len(snap))
	for i, o := range snap {
		edges := make([]reverseEdgeWire, len(o.ReverseEdges))
		for j, e := range o.ReverseEdges {
			edges[j] = reverseEdgeWire{Parent: uint64(e.Parent), Field: e.Field}
		}
		out[i] = snapshotWire{
			ID:           uint64(o.ID),
			Type:         o.TypeName,
			HasType:      o.HasType,
			Fields:       o.Fields,
			ReverseEdges: edges,
		}
	}
	return out
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.metrics.Handler().ServeHTTP(w, r)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, struct {
		Objects []snapshotWire `json:"objects"`
		Types   []string       `json:"types"`
	}{
		Objects: toWireSnapshot(s.report.Snapshot),
		Types:   s.report.TypeNames,
	})
}

type eventWire struct {
	Kind     string `json:"kind"`
	ObjectID uint64 `json:"objectId"`
	Field    string `json:"field"`
	Detail   string `json:"detail"`
}

func toWireEvents(events []graph.CascadeEvent) []eventWire {
	out := make([]eventWire, len(events))
	for i, e := range events {
		out[i] = eventWire{
			Kind:     e.Kind.String(),
			ObjectID: uint64(e.Object),
			Field:    e.Field,
			Detail:   e.Detail,
		}
	}
	return out
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, toWireEvents(s.report.Events))
}

// handleEventsWS pushes the full event array once, framed as a single
// websocket text message, then closes the connection. Evaluation has
// already finished by the time `serve` starts this server, so there is
// nothing to stream incrementally.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.checkAuth(w, r) {
		return
	}
	websocket.Handler(func(ws *websocket.Conn) {
		defer ws.Close()
		payload, err := json.Marshal(toWireEvents(s.report.Events))
		if err != nil {
			return
		}
		ws.Write(payload)
	}).ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
