// Package devremote is a small in-memory stand-in for the remote quote
// endpoint. It speaks the same JSON shape as the public placeholder API the
// client targets by default, plus updatedAt stamps so merges have real
// timestamps to compare.
package devremote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Post is one stored item.
type Post struct {
	ID        string `json:"id"`
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Category  string `json:"category,omitempty"`
	UpdatedAt int64  `json:"updatedAt"`
}

type createRequest struct {
	ID        string `json:"id"`
	UserID    int    `json:"userId"`
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body" validate:"required"`
	Category  string `json:"category"`
	UpdatedAt int64  `json:"updatedAt" validate:"gte=0"`
}

const (
	defaultLimit = 10
	maxBodyBytes = 1 << 20
)

// Server holds posts in insertion order.
type Server struct {
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	mu     sync.RWMutex
	posts  []Post
	index  map[string]int
	nextID int
}

// NewServer returns a server seeded with posts.
func NewServer(logger *zap.Logger, now func() time.Time, seed ...Post) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	s := &Server{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
		index:    make(map[string]int),
		nextID:   1,
	}
	for _, p := range seed {
		s.upsert(p)
	}
	return s
}

// DefaultSeed is the collection `quotebox remote` starts with.
func DefaultSeed(now time.Time) []Post {
	ms := now.UnixMilli()
	return []Post{
		{UserID: 1, Title: "The best way out is always through.", Body: "Perseverance", Category: "Perseverance", UpdatedAt: ms},
		{UserID: 1, Title: "Well done is better than well said.", Body: "Action", Category: "Action", UpdatedAt: ms},
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Route("/posts", func(r chi.Router) {
		r.Get("/", s.listPosts)
		r.Post("/", s.createPost)
		r.Get("/{postID}", s.getPost)
	})
	return router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("stand-in remote listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}

// Posts returns a copy of the stored posts.
func (s *Server) Posts() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Post(nil), s.posts...)
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	for _, key := range []string{"limit", "_limit"} {
		raw := strings.TrimSpace(r.URL.Query().Get(key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", key, raw))
			return
		}
		limit = n
		break
	}

	s.mu.RLock()
	posts := s.posts
	if limit < len(posts) {
		posts = posts[:limit]
	}
	out := append([]Post{}, posts...)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")
	s.mu.RLock()
	idx, ok := s.index[id]
	var p Post
	if ok {
		p = s.posts[idx]
	}
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	p := Post{
		ID:        strings.TrimSpace(req.ID),
		UserID:    req.UserID,
		Title:     req.Title,
		Body:      req.Body,
		Category:  strings.TrimSpace(req.Category),
		UpdatedAt: req.UpdatedAt,
	}
	if p.UpdatedAt == 0 {
		p.UpdatedAt = s.now().UnixMilli()
	}
	stored, created := s.upsert(p)

	s.logger.Info("post stored",
		zap.String("id", stored.ID),
		zap.Bool("created", created),
		zap.String("requestID", chimiddleware.GetReqID(r.Context())),
	)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, stored)
}

// upsert stores p, assigning the next numeric ID when it has none. An
// existing post with the same ID is replaced in place.
func (s *Server) upsert(p Post) (Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		for {
			candidate := strconv.Itoa(s.nextID)
			s.nextID++
			if _, taken := s.index[candidate]; !taken {
				p.ID = candidate
				break
			}
		}
	}
	if idx, ok := s.index[p.ID]; ok {
		s.posts[idx] = p
		return p, false
	}
	s.index[p.ID] = len(s.posts)
	s.posts = append(s.posts, p)
	return p, true
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
