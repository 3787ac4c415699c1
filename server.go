package server

import (
	"fmt"
	"net/http"
	"time"
	"todo-app/internal/logger"
	"todo-app/internal/manager"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const welcomeText = "Welcome to my first Task Manager App"

func NewRouter(tm *manager.TaskManager) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestLogger, recoverer)

	r.Get("/", welcomeHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", listTasksHandler(tm))
		r.Post("/", addTaskHandler(tm))
		r.Get("/priority/{level}", tasksByPriorityHandler(tm))
		r.Get("/{id}", getTaskHandler(tm))
		r.Put("/{id}", updateTaskHandler(tm))
		r.Delete("/{id}", deleteTaskHandler(tm))
	})
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

// requestLogger присваивает запросу id и пишет строку лога после ответа
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logger.WithRequestID(r.Context(), id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Info(ctx, "Запрос обработан",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// recoverer превращает панику в обработчике в общий ответ 500.
// Если ответ уже начат, остается только запись в лог.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, ok := w.(*statusRecorder)
		if !ok {
			rec = &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		}
		defer func() {
			if rv := recover(); rv != nil {
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				logger.Error(r.Context(), fmt.Errorf("panic: %v", rv), "Паника в обработчике", "path", r.URL.Path)
				if !rec.wroteHeader {
					writeMessage(rec, http.StatusInternalServerError, msgInternal)
				}
			}
		}()
		next.ServeHTTP(rec, r)
	})
}

func welcomeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, welcomeText)
}
