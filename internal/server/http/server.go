package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/duraq/duraq/internal/queue"
	"github.com/duraq/duraq/internal/runtime"
)

// Server exposes the queue registry over a small JSON HTTP API.
type Server struct {
	rt  *runtime.Runtime
	srv *http.Server
	lis net.Listener
}

func New(rt *runtime.Runtime) *Server {
	mux := http.NewServeMux()
	s := &Server{rt: rt, srv: &http.Server{Handler: cors(mux)}}
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	mux.HandleFunc("/v1/queues", s.handleList)
	mux.HandleFunc("/v1/queues/create", s.handleCreate)
	mux.HandleFunc("/v1/queues/enqueue", s.handleEnqueue)
	mux.HandleFunc("/v1/queues/dequeue", s.handleDequeue)
	mux.HandleFunc("/v1/queues/info", s.handleInfo)
	mux.HandleFunc("/v1/queues/reset-counters", s.handleResetCounters)
	mux.HandleFunc("/v1/queues/shutdown", s.handleShutdown)
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeErr maps queue errors onto HTTP statuses. ErrEmpty is handled by the
// dequeue handler itself (204, not an error).
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, queue.ErrInvalidName),
		errors.Is(err, queue.ErrPayloadTooLarge):
		status = http.StatusBadRequest
	case errors.Is(err, queue.ErrNotStarted):
		status = http.StatusNotFound
	case errors.Is(err, queue.ErrAlreadyStarted):
		status = http.StatusConflict
	case errors.Is(err, queue.ErrTooManyQueues):
		status = http.StatusForbidden
	case errors.Is(err, queue.ErrQueueClosed),
		errors.Is(err, queue.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_serving"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	names, err := s.rt.ListQueues()
	if err != nil {
		writeErr(w, err)
		return
	}
	running := s.rt.Queues().Names()
	live := make(map[string]bool, len(running))
	for _, n := range running {
		live[n] = true
	}
	type entry struct {
		Name    string `json:"name"`
		Running bool   `json:"running"`
	}
	out := make([]entry, 0, len(names))
	for _, n := range names {
		out = append(out, entry{Name: n, Running: live[n]})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"queues": out})
}

type createReq struct {
	Queue string `json:"queue"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if _, err := s.rt.Queues().Start(req.Queue); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type enqueueReq struct {
	Queue    string `json:"queue"`
	Priority int64  `json:"priority"`
	Payload  []byte `json:"payload"`
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req enqueueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.Priority < 0 || req.Priority > int64(^uint32(0)) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "priority out of range"})
		return
	}
	if err := s.rt.Queues().ValidatePayload(req.Payload); err != nil {
		writeErr(w, err)
		return
	}
	a, err := s.rt.Queues().GetOrStart(req.Queue)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := a.Enqueue(r.Context(), uint32(req.Priority), req.Payload); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type dequeueReq struct {
	Queue string `json:"queue"`
}

func (s *Server) handleDequeue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req dequeueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	a, err := s.rt.Queues().GetOrStart(req.Queue)
	if err != nil {
		writeErr(w, err)
		return
	}
	payload, err := a.Dequeue(r.Context())
	if errors.Is(err, queue.ErrEmpty) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"payload": payload})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	name := r.URL.Query().Get("queue")
	a, ok := s.rt.Queues().Get(name)
	if !ok {
		writeErr(w, queue.ErrNotStarted)
		return
	}
	stats, err := a.Info(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(stats)
}

type resetReq struct {
	Queue string `json:"queue"`
}

func (s *Server) handleResetCounters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	a, ok := s.rt.Queues().Get(req.Queue)
	if !ok {
		writeErr(w, queue.ErrNotStarted)
		return
	}
	if err := a.ResetCounters(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type shutdownReq struct {
	Queue string `json:"queue"`
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req shutdownReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := s.rt.Queues().Shutdown(req.Queue); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
