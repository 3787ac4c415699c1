package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"todo-app/internal/logger"
	"todo-app/internal/manager"
	"todo-app/internal/models"
)

const helpText = `Доступные команды:
/list [done] - показать задачи (done - выполненные)
/get [номер] - показать задачу
/add [название] | [описание] | [приоритет] - добавить задачу
/done [номер] - переключить отметку выполнения
/delete [номер] - удалить задачу
/priority [low|medium|high] - задачи с приоритетом
/help - эта справка

Примеры:
/add Купить молоко | 2 литра | high
/done 1`

// Handler превращает команды бота в операции над TaskManager.
// Сеть не использует, поэтому тестируется напрямую.
type Handler struct {
	tm *manager.TaskManager
}

func NewHandler(tm *manager.TaskManager) *Handler {
	return &Handler{tm: tm}
}

// Respond выполняет команду и возвращает текст ответа
func (h *Handler) Respond(ctx context.Context, command, args string) string {
	args = strings.TrimSpace(args)

	switch command {
	case "start", "help":
		return helpText
	case "list":
		return formatTasks(h.tm.ListTasks(ctx, args == "done", true))
	case "get":
		id, err := parseTaskID(args)
		if err != nil {
			return err.Error()
		}
		task, err := h.tm.GetTask(ctx, id)
		if err != nil {
			return describeError(err)
		}
		return formatTask(task)
	case "add":
		return h.add(ctx, args)
	case "done":
		id, err := parseTaskID(args)
		if err != nil {
			return err.Error()
		}
		task, err := h.tm.ToggleComplete(ctx, id)
		if err != nil {
			return describeError(err)
		}
		if task.Completed {
			return fmt.Sprintf("✅ Задача #%d отмечена выполненной!", id)
		}
		return fmt.Sprintf("🟢 Задача #%d снова в работе", id)
	case "delete":
		id, err := parseTaskID(args)
		if err != nil {
			return err.Error()
		}
		if err := h.tm.DeleteTask(ctx, id); err != nil {
			return describeError(err)
		}
		return fmt.Sprintf("🗑️ Задача #%d удалена!", id)
	case "priority":
		tasks := h.tm.FilterByPriority(ctx, args)
		return formatTasks(tasks)
	default:
		return "Неизвестная команда. Используйте /help для списка команд."
	}
}

func (h *Handler) add(ctx context.Context, args string) string {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || len(parts) > 3 {
		return "Формат: /add Название | Описание | приоритет"
	}

	payload := map[string]any{
		"title":       parts[0],
		"description": parts[1],
		"completed":   false,
	}
	if len(parts) == 3 && parts[2] != "" {
		payload["priority"] = strings.ToLower(parts[2])
	}

	task, err := h.tm.AddTask(ctx, payload)
	if err != nil {
		return describeError(err)
	}
	return fmt.Sprintf("✅ Задача добавлена!\n\n%s", formatTask(task))
}

func parseTaskID(args string) (int64, error) {
	if args == "" {
		return 0, errors.New("Укажите номер задачи, например: /done 1")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args, "#"), 10, 64)
	if err != nil {
		return 0, errors.New("Номер задачи должен быть числом")
	}
	return id, nil
}

func describeError(err error) string {
	switch {
	case errors.Is(err, manager.ErrTaskNotFound):
		return "❌ Задача не найдена"
	case errors.Is(err, manager.ErrInvalidTask):
		return "❌ Некорректные данные задачи: название и описание не должны быть пустыми, приоритет - low, medium или high"
	default:
		return "❌ Внутренняя ошибка, попробуйте позже"
	}
}

func priorityEmoji(p models.Priority) string {
	switch p {
	case models.PriorityLow:
		return "🔵"
	case models.PriorityMedium:
		return "🟡"
	case models.PriorityHigh:
		return "🔴"
	}
	return "⚪"
}

func formatTask(task models.Task) string {
	status := "🟢"
	if task.Completed {
		status = "✅"
	}
	return fmt.Sprintf("%s%s #%d: %s\n%s", status, priorityEmoji(task.Priority), task.ID, task.Title, task.Description)
}

func formatTasks(tasks []models.Task) string {
	if len(tasks) == 0 {
		return "📭 Список задач пуст"
	}

	var response strings.Builder
	response.WriteString("📋 Задачи:\n\n")
	for _, task := range tasks {
		response.WriteString(formatTask(task))
		response.WriteString("\n\n")
	}
	return strings.TrimRight(response.String(), "\n")
}

// Bot принимает сообщения Telegram и отвечает через Handler
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
}

func New(token string, tm *manager.TaskManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания бота: %w", err)
	}
	logger.Info(context.Background(), "Авторизован в Telegram", "bot", api.Self.UserName)

	return &Bot{api: api, handler: NewHandler(tm)}, nil
}

// Start читает обновления, пока не отменен ctx
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("ошибка получения updates: %w", err)
	}
	logger.Info(ctx, "Бот запущен и слушает сообщения")

	serveUpdates(ctx, updates, b.handleMessage)
	b.api.StopReceivingUpdates()
	logger.Info(ctx, "Бот остановлен")
	return nil
}

// serveUpdates обрабатывает каждое сообщение в своей горутине и возвращается
// только после того, как все начатые ответы завершены.
func serveUpdates(ctx context.Context, updates <-chan tgbotapi.Update, handle func(context.Context, *tgbotapi.Message)) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				handle(ctx, msg)
			}(update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	ctx = logger.WithRequestID(ctx, fmt.Sprintf("tg-%d-%d", msg.Chat.ID, msg.MessageID))
	logger.Info(ctx, "Получено сообщение", "chat", msg.Chat.ID, "text", msg.Text)

	var reply string
	if msg.IsCommand() {
		reply = b.handler.Respond(ctx, msg.Command(), msg.CommandArguments())
	} else {
		reply = "Используйте /help для списка команд."
	}
	b.sendMessage(ctx, msg.Chat.ID, reply)
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Error(ctx, err, "Ошибка отправки сообщения", "chat", chatID)
	}
}
