package erised_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exla-ai/erised-go/pkg/erised"
)

// storedMemory is the mock service's record of one stored image.
type storedMemory struct {
	MemoryID string                 `json:"memory_id"`
	UserID   string                 `json:"user_id,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	ImageURL string                 `json:"image_url,omitempty"`
}

// scoredMemory is a search hit with its similarity score.
type scoredMemory struct {
	storedMemory
	Score float64 `json:"score"`
}

// mockService is an in-memory stand-in for the hosted Erised API.
//
// It stores uploaded images and metadata, serves them back through the same
// endpoints the real service exposes, counts every request it receives and
// records the headers of the most recent one.
type mockService struct {
	*httptest.Server

	mu       sync.Mutex
	memories map[string]*storedMemory
	order    []string
	images   map[string][]byte
	scores   map[string]float64
	nextID   int

	requests      int
	lastAuth      string
	lastUserAgent string
	lastRequestID string

	// Custom handlers for testing
	customAdd    http.HandlerFunc
	customSearch http.HandlerFunc
	customHealth http.HandlerFunc
}

func newMockService() *mockService {
	mock := &mockService{
		memories: make(map[string]*storedMemory),
		images:   make(map[string][]byte),
		scores:   make(map[string]float64),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/memories/add", mock.handleAdd)
	mux.HandleFunc("/v1/memories/search", mock.handleSearch)
	mux.HandleFunc("/v1/memories", mock.handleList)
	mux.HandleFunc("/v1/memories/", mock.handleMemory)
	mux.HandleFunc("/health", mock.handleHealth)

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests++
		mock.lastAuth = r.Header.Get("Authorization")
		mock.lastUserAgent = r.Header.Get("User-Agent")
		mock.lastRequestID = r.Header.Get("X-Request-ID")
		mock.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))

	return mock
}

func (s *mockService) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// seed stores a memory directly, bypassing the upload endpoint.
func (s *mockService) seed(memoryID, userID string, metadata map[string]interface{}, image []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := &storedMemory{
		MemoryID: memoryID,
		UserID:   userID,
		Metadata: metadata,
	}
	if image != nil {
		record.ImageURL = "/v1/memories/" + memoryID + "/image"
		s.images[memoryID] = image
	}
	s.memories[memoryID] = record
	s.order = append(s.order, memoryID)
}

// setScore fixes the similarity score a memory gets in search results.
func (s *mockService) setScore(memoryID string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[memoryID] = score
}

func (s *mockService) handleAdd(w http.ResponseWriter, r *http.Request) {
	if s.customAdd != nil {
		s.customAdd(w, r)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		writeError(w, http.StatusUnprocessableEntity, "user_id is required")
		return
	}

	var metadata map[string]interface{}
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "metadata is not valid JSON")
			return
		}
	}

	s.mu.Lock()
	memoryID := r.FormValue("memory_id")
	if memoryID == "" {
		s.nextID++
		memoryID = fmt.Sprintf("m-%03d", s.nextID)
	}
	s.memories[memoryID] = &storedMemory{
		MemoryID: memoryID,
		UserID:   userID,
		Metadata: metadata,
		ImageURL: "/v1/memories/" + memoryID + "/image",
	}
	s.images[memoryID] = data
	s.order = append(s.order, memoryID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"memory_id": memoryID,
		"message":   "memory stored",
	})
}

func (s *mockService) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.customSearch != nil {
		s.customSearch(w, r)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload struct {
		Query   string                 `json:"query"`
		TopK    int                    `json:"top_k"`
		Filters map[string]interface{} `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, _ := payload.Filters["user_id"].(string)

	s.mu.Lock()
	results := make([]scoredMemory, 0)
	for _, id := range s.order {
		record := s.memories[id]
		if userID != "" && record.UserID != userID {
			continue
		}
		score, ok := s.scores[id]
		if !ok {
			score = 0.5
		}
		results = append(results, scoredMemory{storedMemory: *record, Score: score})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *mockService) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	userID := r.URL.Query().Get("user_id")

	s.mu.Lock()
	matching := make([]*storedMemory, 0)
	for _, id := range s.order {
		record := s.memories[id]
		if userID != "" && record.UserID != userID {
			continue
		}
		matching = append(matching, record)
	}
	s.mu.Unlock()

	total := len(matching)
	if offset > len(matching) {
		offset = len(matching)
	}
	matching = matching[offset:]
	if limit > 0 && len(matching) > limit {
		matching = matching[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"memories": matching,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// handleMemory dispatches get, delete and image fetches for a single memory.
func (s *mockService) handleMemory(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/memories/")
	memoryID := strings.TrimSuffix(rest, "/image")
	wantImage := strings.HasSuffix(rest, "/image")

	s.mu.Lock()
	record, ok := s.memories[memoryID]
	image := s.images[memoryID]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "memory not found")
		return
	}

	switch {
	case wantImage:
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(image)
	case r.Method == http.MethodDelete:
		s.mu.Lock()
		delete(s.memories, memoryID)
		delete(s.images, memoryID)
		for i, id := range s.order {
			if id == memoryID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "memory deleted"})
	case r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, record)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *mockService) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.customHealth != nil {
		s.customHealth(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError reports an error the way the real service does: a JSON body
// with the message under "detail".
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]interface{}{"detail": detail})
}

// newTestClient builds a client pointed at the mock service.
func newTestClient(t *testing.T, service *mockService) *erised.Client {
	t.Helper()
	client, err := erised.NewClient(&erised.Config{
		APIKey:  "test-key",
		BaseURL: service.URL,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// pngBytes is a minimal PNG-tagged payload for upload tests.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, []byte("fake image payload")...)
