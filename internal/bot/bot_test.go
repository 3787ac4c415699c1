package bot

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"todo-app/internal/manager"
	"todo-app/internal/models"
	"todo-app/internal/storage"
)

func newTestHandler(t *testing.T) (*Handler, *manager.TaskManager) {
	t.Helper()
	st := storage.NewMemoryStorage(
		models.Task{ID: 1, Title: "Купить молоко", Description: "2 литра", Priority: models.PriorityHigh, CreatedAt: 10},
		models.Task{ID: 2, Title: "Отчет", Description: "квартальный", Completed: true, CreatedAt: 20},
	)
	tm, err := manager.NewTaskManagerWithStorage(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	return NewHandler(tm), tm
}

func TestRespond(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	cases := []struct {
		command, args string
		contains      string
	}{
		{"help", "", "/add"},
		{"start", "", "/list"},
		{"list", "", "Купить молоко"},
		{"list", "done", "Отчет"},
		{"get", "1", "🔴 #1: Купить молоко"},
		{"get", "#2", "Отчет"},
		{"get", "99", "не найдена"},
		{"get", "x", "числом"},
		{"get", "", "Укажите номер"},
		{"priority", "high", "#1"},
		{"priority", "urgent", "пуст"},
		{"bogus", "", "Неизвестная команда"},
	}
	for _, tc := range cases {
		got := h.Respond(ctx, tc.command, tc.args)
		if !strings.Contains(got, tc.contains) {
			t.Errorf("/%s %s = %q, want it to contain %q", tc.command, tc.args, got, tc.contains)
		}
	}

	if got := h.Respond(ctx, "list", ""); strings.Contains(got, "Отчет") {
		t.Errorf("pending list contains completed task: %q", got)
	}
}

func TestRespondAdd(t *testing.T) {
	h, tm := newTestHandler(t)
	ctx := context.Background()

	got := h.Respond(ctx, "add", "Спорт | пробежка | Medium")
	if !strings.Contains(got, "добавлена") || !strings.Contains(got, "#3") {
		t.Fatalf("add reply = %q", got)
	}
	task, err := tm.GetTask(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if task.Title != "Спорт" || task.Description != "пробежка" || task.Priority != models.PriorityMedium {
		t.Errorf("stored %+v", task)
	}

	for _, args := range []string{"", "только название", "a | b | urgent", " | b"} {
		if got := h.Respond(ctx, "add", args); strings.Contains(got, "добавлена") {
			t.Errorf("/add %q must fail, got %q", args, got)
		}
	}
	if n := len(tm.GetAllTasks()); n != 3 {
		t.Errorf("tasks = %d, want 3", n)
	}
}

func TestRespondDoneAndDelete(t *testing.T) {
	h, tm := newTestHandler(t)
	ctx := context.Background()

	if got := h.Respond(ctx, "done", "1"); !strings.Contains(got, "выполненной") {
		t.Errorf("done reply = %q", got)
	}
	if task, _ := tm.GetTask(ctx, 1); !task.Completed || task.CreatedAt != 10 {
		t.Errorf("task after done = %+v", task)
	}
	if got := h.Respond(ctx, "done", "1"); !strings.Contains(got, "в работе") {
		t.Errorf("second done reply = %q", got)
	}

	if got := h.Respond(ctx, "delete", "2"); !strings.Contains(got, "удалена") {
		t.Errorf("delete reply = %q", got)
	}
	if got := h.Respond(ctx, "delete", "2"); !strings.Contains(got, "не найдена") {
		t.Errorf("second delete reply = %q", got)
	}
}

func TestServeUpdatesWaitsForHandlers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan tgbotapi.Update)
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	done := make(chan struct{})
	go func() {
		serveUpdates(ctx, updates, func(ctx context.Context, msg *tgbotapi.Message) {
			close(started)
			<-release
			finished.Store(true)
		})
		close(done)
	}()

	updates <- tgbotapi.Update{Message: &tgbotapi.Message{Text: "/list"}}
	<-started
	cancel()

	select {
	case <-done:
		t.Fatal("serveUpdates returned while a reply was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("serveUpdates did not return after the handler finished")
	}
	if !finished.Load() {
		t.Error("handler did not finish")
	}
}

func TestServeUpdatesClosedChannel(t *testing.T) {
	updates := make(chan tgbotapi.Update, 3)
	updates <- tgbotapi.Update{Message: &tgbotapi.Message{Text: "/help"}}
	updates <- tgbotapi.Update{}
	updates <- tgbotapi.Update{Message: &tgbotapi.Message{Text: "/list"}}
	close(updates)

	var handled atomic.Int32
	serveUpdates(context.Background(), updates, func(ctx context.Context, msg *tgbotapi.Message) {
		time.Sleep(10 * time.Millisecond)
		handled.Add(1)
	})

	if got := handled.Load(); got != 2 {
		t.Errorf("handled %d messages, want 2", got)
	}
}
