package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// APIServer is a fake video site API for tests. It serves CatalogBody at
// /api/v1/content and transcripts at /api/v1/transcript, failing the first
// FailuresBefore[transcriptID] requests for a transcript with status 500.
// A negative count fails every request.
type APIServer struct {
	*httptest.Server

	mu              sync.Mutex
	CatalogBody     string
	CatalogStatus   int
	Transcripts     map[int]string
	FailuresBefore  map[int]int
	catalogRequests int
	requests        map[int]int
}

// NewAPIServer starts a fake API serving catalog and the default transcript
// for every transcript ID. The server is closed when the test ends.
func NewAPIServer(t testing.TB, catalog string) *APIServer {
	t.Helper()
	s := &APIServer{
		CatalogBody:    catalog,
		Transcripts:    make(map[int]string),
		FailuresBefore: make(map[int]int),
		requests:       make(map[int]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *APIServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.URL.Path {
	case "/api/v1/content":
		s.catalogRequests++
		if s.CatalogStatus != 0 {
			w.WriteHeader(s.CatalogStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(s.CatalogBody))
	case "/api/v1/transcript":
		id, err := strconv.Atoi(r.URL.Query().Get("transcriptId"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.requests[id]++
		if fails := s.FailuresBefore[id]; fails < 0 || s.requests[id] <= fails {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, ok := s.Transcripts[id]
		if !ok {
			body = DefaultTranscriptJSON()
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(body))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// TranscriptRequests returns how many requests were made for transcriptID
func (s *APIServer) TranscriptRequests(transcriptID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[transcriptID]
}

// CatalogRequests returns how many catalog requests were made
func (s *APIServer) CatalogRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogRequests
}
