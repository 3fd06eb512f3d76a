package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/story-context/internal/db"
	"github.com/jonathan/story-context/internal/embedding"
	"github.com/jonathan/story-context/internal/generation"
	"github.com/jonathan/story-context/internal/llm"
	"github.com/jonathan/story-context/internal/similarity"
	"github.com/jonathan/story-context/internal/types"
)

// storyStore is the persistence surface the epic CRUD endpoints use.
type storyStore interface {
	ListStoriesByEpic(ctx context.Context, epicID string) ([]types.Story, error)
	GetStory(ctx context.Context, storyID uuid.UUID) (*types.Story, error)
	InsertStory(ctx context.Context, epicID string, story types.Story) (uuid.UUID, error)
	DeleteStory(ctx context.Context, storyID uuid.UUID) error
}

// similarityRanker retrieves the stories of an epic most similar to a query.
type similarityRanker interface {
	RankSimilar(ctx context.Context, query types.Story, epic []types.Story, excludeID string) ([]types.RankedStory, error)
}

// storyGenerator produces a story for a requirement, optionally conditioned
// on reference stories.
type storyGenerator interface {
	Generate(ctx context.Context, requirement string, references []types.RankedStory) (types.GenerationResult, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	store      storyStore
	ranker     similarityRanker
	generator  storyGenerator
	validator  *validator.Validate
	closers    []func()
}

// Config holds server configuration
type Config struct {
	Port           int
	DatabaseURL    string
	APIKey         string
	Model          string
	EmbeddingModel string
}

// New creates a new server instance
func New(ctx context.Context, cfg Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	embedder, err := embedding.NewGeminiEmbedder(ctx, cfg.APIKey, cfg.EmbeddingModel)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	modelConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		modelConfig = modelConfig.WithModel(llm.TierStandard, cfg.Model)
	}

	client, err := llm.NewClient(ctx, modelConfig, cfg.APIKey)
	if err != nil {
		embedder.Close()
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	s := &Server{
		store:     database,
		ranker:    similarity.NewCalculator(embedder, similarity.WithWarnFunc(log.Printf)),
		generator: generation.NewGenerator(client),
		validator: validator.New(),
		closers: []func(){
			func() { _ = client.Close() },
			func() { _ = embedder.Close() },
			database.Close,
		},
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(s.routes())),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /similar", s.handleSimilar)
	mux.HandleFunc("POST /metrics", s.handleMetrics)
	mux.HandleFunc("POST /generate", s.handleGenerate)

	// Epic story CRUD
	mux.HandleFunc("GET /epics/{id}/stories", s.handleListEpicStories)
	mux.HandleFunc("POST /epics/{id}/stories", s.handleCreateEpicStory)
	mux.HandleFunc("GET /stories/{id}", s.handleGetStory)
	mux.HandleFunc("DELETE /stories/{id}", s.handleDeleteStory)

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	for _, closeFn := range s.closers {
		closeFn()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
