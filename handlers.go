package server

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"todo-app/internal/logger"
	"todo-app/internal/manager"
	"todo-app/internal/schema"

	"github.com/go-chi/chi/v5"
)

const (
	msgNotFound = "Task not found"
	msgInvalid  = "Invalid task data"
	msgDeleted  = "Task deleted"
	msgInternal = "Internal server error"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError единственное место, где ошибка превращается в HTTP-статус
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, manager.ErrInvalidTask):
		writeMessage(w, http.StatusBadRequest, msgInvalid)
	case errors.Is(err, manager.ErrTaskNotFound):
		writeMessage(w, http.StatusNotFound, msgNotFound)
	default:
		logger.Error(r.Context(), err, "Ошибка обработки запроса", "method", r.Method, "path", r.URL.Path)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
	}
}

// completedFilter: нет параметра или "false" в любом регистре = false,
// любое другое значение = true
func completedFilter(r *http.Request) bool {
	values, ok := r.URL.Query()["completed"]
	if !ok || len(values) == 0 {
		return false
	}
	return !strings.EqualFold(values[0], "false")
}

// parseID разбирает id как целое: пробелы, знак и ведущие цифры,
// остаток строки игнорируется. ok=false, если цифр нет.
func parseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	var n int64
	digits := 0
	for ; digits < len(s); digits++ {
		c := s[digits]
		if c < '0' || c > '9' {
			break
		}
		if n > (math.MaxInt64-int64(c-'0'))/10 {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func listTasksHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, sortByCreated := r.URL.Query()["sort"]
		tasks := tm.ListTasks(r.Context(), completedFilter(r), sortByCreated)
		writeJSON(w, http.StatusOK, tasks)
	}
}

func getTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			writeMessage(w, http.StatusNotFound, msgNotFound)
			return
		}

		task, err := tm.GetTask(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func decodeBody(r *http.Request) (any, bool) {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	var payload any
	if err := dec.Decode(&payload); err != nil {
		logger.Debug(r.Context(), "Некорректный JSON в теле запроса", "err", err)
		return nil, false
	}
	// тело должно состоять ровно из одного JSON-значения
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		logger.Debug(r.Context(), "Лишние данные после JSON в теле запроса", "err", err)
		return nil, false
	}
	return payload, true
}

func addTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := decodeBody(r)
		if !ok {
			writeMessage(w, http.StatusBadRequest, msgInvalid)
			return
		}

		task, err := tm.AddTask(r.Context(), payload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
	}
}

func updateTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := decodeBody(r)
		if !ok {
			writeMessage(w, http.StatusBadRequest, msgInvalid)
			return
		}

		// тело проверяется раньше id, как и в UpdateTask
		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			if !schema.Task.Validate(payload) {
				writeMessage(w, http.StatusBadRequest, msgInvalid)
				return
			}
			writeMessage(w, http.StatusNotFound, msgNotFound)
			return
		}

		task, err := tm.UpdateTask(r.Context(), id, payload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func deleteTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			writeMessage(w, http.StatusNotFound, msgNotFound)
			return
		}

		if err := tm.DeleteTask(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, msgDeleted)
	}
}

func tasksByPriorityHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks := tm.FilterByPriority(r.Context(), chi.URLParam(r, "level"))
		writeJSON(w, http.StatusOK, tasks)
	}
}
