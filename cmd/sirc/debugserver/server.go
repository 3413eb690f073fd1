// Package debugserver exposes a loaded module's dispatch table, storage
// dump, and invoke entry point over HTTP, grounded on the teacher's
// HeavyVM-fronting HTTP API (core/virtual_machine.go): a gorilla/mux
// router behind a golang.org/x/time/rate limiter, JSON request/response
// bodies, and logrus request logging.
package debugserver

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/synnergy-labs/sir-compiler/core/mockruntime"
)

// Server fronts one loaded module and the single Runtime its invocations
// share, so storage written by one /invoke call is visible to the next.
type Server struct {
	mod *mockruntime.Module
	rt  *mockruntime.Runtime

	mu      sync.Mutex
	limiter *rate.Limiter
}

// New wraps mod with a shared runtime built from opts. limiter governs the
// whole HTTP surface, not just /invoke, matching the teacher's single
// process-wide limiter guarding every route.
func New(mod *mockruntime.Module, opts mockruntime.Options, limiter *rate.Limiter) *Server {
	if limiter == nil {
		limiter = rate.NewLimiter(200, 100) // 200 req/s, burst 100
	}
	return &Server{
		mod:     mod,
		rt:      mockruntime.NewRuntime(opts),
		limiter: limiter,
	}
}

func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Router builds the mux.Router serving /dispatch, /storage, and /invoke.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.limit)
	r.HandleFunc("/dispatch", s.handleDispatch).Methods(http.MethodGet)
	r.HandleFunc("/storage", s.handleStorage).Methods(http.MethodGet)
	r.HandleFunc("/invoke", s.handleInvoke).Methods(http.MethodPost)
	return r
}

// ListenAndServe starts an http.Server on addr with the same timeouts the
// teacher's bootstrap uses.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	logrus.WithField("addr", addr).Info("debug server listening")
	return srv.ListenAndServe()
}

type dispatchEntry struct {
	Name     string   `json:"name"`
	Internal string   `json:"internal"`
	Params   []string `json:"params"`
	Ret      string   `json:"ret,omitempty"`
	HasRet   bool     `json:"has_ret"`
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	stubs := s.mod.Stubs()
	entries := make([]dispatchEntry, 0, len(stubs))
	for _, st := range stubs {
		e := dispatchEntry{Name: st.Name, Internal: st.Internal, HasRet: st.HasRet}
		for _, pt := range st.ParamTypes {
			e.Params = append(e.Params, pt.String())
		}
		if st.HasRet {
			e.Ret = st.RetType.String()
		}
		entries = append(entries, e)
	}
	writeJSON(w, entries)
}

type storageEntry struct {
	Key   string `json:"key_hex"`
	Value string `json:"value_hex"`
}

func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	dump := s.rt.DumpStorage()
	s.mu.Unlock()

	entries := make([]storageEntry, 0, len(dump))
	for k, v := range dump {
		entries = append(entries, storageEntry{Key: hex.EncodeToString([]byte(k)), Value: hex.EncodeToString(v)})
	}
	writeJSON(w, entries)
}

type invokeRequest struct {
	Entry      string `json:"entry"`
	ArgpackHex string `json:"argpack_hex"`
}

type invokeResponse struct {
	InvocationID string   `json:"invocation_id"`
	Status       bool     `json:"status"`
	ReturnHex    string   `json:"return_hex,omitempty"`
	Events       []string `json:"events,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	argpack, err := hex.DecodeString(req.ArgpackHex)
	if err != nil {
		http.Error(w, fmt.Sprintf("decode argpack_hex: %v", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	rec := s.rt.Invoke(s.mod, req.Entry, argpack)
	s.mu.Unlock()

	resp := invokeResponse{InvocationID: rec.InvocationID, Status: rec.Status, Error: rec.Error}
	if len(rec.ReturnBytes) > 0 {
		resp.ReturnHex = hex.EncodeToString(rec.ReturnBytes)
	}
	for _, e := range rec.Events {
		resp.Events = append(resp.Events, fmt.Sprintf("%s:%s", e.Topic, hex.EncodeToString(e.Data)))
	}
	w.Header().Set("Content-Type", "application/json")
	if !rec.Status {
		logrus.WithField("invocation", rec.InvocationID).WithField("entry", req.Entry).Warn("debug invoke aborted")
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
