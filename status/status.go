package status

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HandlerFunc reports one component's state as flat key/value pairs.
type HandlerFunc func() map[string]string

// Server exposes a small JSON status endpoint. Components register
// themselves under a name and get polled on every request.
type Server struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	upSince  time.Time
	log      *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{
		handlers: make(map[string]HandlerFunc),
		upSince:  time.Now(),
		log:      log,
	}
}

func (s *Server) Register(name string, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = handler
	s.log.Info("added status handler", zap.String("name", name))
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	return r
}

// Run blocks serving the status endpoint.
func (s *Server) Run(addr string) error {
	s.log.Info("status server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleStatus(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	body := map[string]interface{}{
		"uptime": time.Since(s.upSince).Round(time.Second).String(),
	}
	for name, handler := range s.handlers {
		body[name] = handler()
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("failed to write status response", zap.Error(err))
	}
}
