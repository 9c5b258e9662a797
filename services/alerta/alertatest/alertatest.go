package alertatest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/google/uuid"
)

type Server struct {
	mu       sync.Mutex
	ts       *httptest.Server
	URL      string
	requests []Request
	closed   bool

	// Reject makes the server answer with this status code and an Alerta error body.
	Reject int
}

func NewServer() *Server {
	s := new(Server)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ar := Request{
			Method:        r.Method,
			URL:           r.URL.String(),
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
		}
		dec := json.NewDecoder(r.Body)
		dec.Decode(&ar.PostData)
		s.mu.Lock()
		s.requests = append(s.requests, ar)
		reject := s.Reject
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if reject != 0 {
			w.WriteHeader(reject)
			json.NewEncoder(w).Encode(map[string]string{
				"status":  "error",
				"message": "rejected by alertatest",
			})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"id":     uuid.New().String(),
			"alert":  ar.PostData,
		})
	}))
	s.ts = ts
	s.URL = ts.URL
	return s
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) SetReject(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reject = code
}

func (s *Server) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.ts.Close()
}

type Request struct {
	Method        string
	URL           string
	Authorization string
	ContentType   string
	PostData      map[string]interface{}
}
