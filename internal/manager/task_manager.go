package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"todo-app/internal/logger"
	"todo-app/internal/models"
	"todo-app/internal/schema"
	"todo-app/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidTask  = schema.ErrInvalid
)

var (
	addTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoapp_tasks_added_total",
			Help: "Total number of AddTask operations",
		},
		[]string{"status"},
	)

	updateTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoapp_tasks_updated_total",
			Help: "Total number of UpdateTask operations",
		},
		[]string{"status"},
	)

	deleteTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoapp_tasks_deleted_total",
			Help: "Total number of DeleteTask operations",
		},
		[]string{"status"},
	)

	taskDescLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "todoapp_task_desc_length_bytes",
			Help:    "Length distribution of task descriptions",
			Buckets: []float64{50, 100, 500, 1000},
		},
	)

	saveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "todoapp_storage_save_duration_seconds",
			Help:    "Duration of full collection writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	storedTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "todoapp_tasks_stored",
			Help: "Number of tasks currently in the store",
		},
	)
)

// TaskManager единственный владелец коллекции задач.
// Чтение и запись идут через одну и ту же копию, запись сериализована mu.
type TaskManager struct {
	tasks   []models.Task
	storage storage.Storage
	now     func() time.Time
	mu      sync.RWMutex
}

// NewTaskManagerWithStorage загружает коллекцию из хранилища один раз
func NewTaskManagerWithStorage(ctx context.Context, st storage.Storage) (*TaskManager, error) {
	tasks, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки задач: %w", err)
	}
	storedTasks.Set(float64(len(tasks)))
	logger.Info(ctx, "Задачи загружены", "count", len(tasks))

	return &TaskManager{
		tasks:   tasks,
		storage: st,
		now:     time.Now,
	}, nil
}

// SetClock подменяет источник времени для createdAt
func (tm *TaskManager) SetClock(now func() time.Time) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.now = now
}

// GetAllTasks возвращает копию всей коллекции в исходном порядке
func (tm *TaskManager) GetAllTasks() []models.Task {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return models.CloneTasks(tm.tasks)
}

// ListTasks фильтрует по completed и при sortByCreated сортирует
// результат по createdAt от новых к старым.
func (tm *TaskManager) ListTasks(ctx context.Context, completed, sortByCreated bool) []models.Task {
	tm.mu.RLock()
	result := make([]models.Task, 0, len(tm.tasks))
	for _, task := range tm.tasks {
		if task.Completed == completed {
			result = append(result, task)
		}
	}
	tm.mu.RUnlock()

	if sortByCreated {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt > result[j].CreatedAt
		})
	}
	logger.Debug(ctx, "Список задач", "completed", completed, "sort", sortByCreated, "count", len(result))
	return result
}

func (tm *TaskManager) GetTask(ctx context.Context, id int64) (models.Task, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if i := indexOf(tm.tasks, id); i >= 0 {
		return tm.tasks[i], nil
	}
	return models.Task{}, fmt.Errorf("задача %d: %w", id, ErrTaskNotFound)
}

// FilterByPriority возвращает задачи с точно таким приоритетом.
// Неизвестный уровень дает пустой список.
func (tm *TaskManager) FilterByPriority(ctx context.Context, level string) []models.Task {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	result := []models.Task{}
	for _, task := range tm.tasks {
		if string(task.Priority) == level {
			result = append(result, task)
		}
	}
	return result
}

// AddTask проверяет тело запроса, назначает createdAt (и id, если его нет)
// и сохраняет коллекцию.
func (tm *TaskManager) AddTask(ctx context.Context, payload any) (models.Task, error) {
	task, hasID, err := schema.Decode(payload)
	if err != nil {
		addTaskCount.WithLabelValues("invalid").Inc()
		return models.Task{}, err
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	if !hasID {
		task.ID = nextID(tm.tasks)
	}
	task.CreatedAt = tm.now().UnixMilli()

	next := append(models.CloneTasks(tm.tasks), task)
	if err := tm.commit(ctx, next); err != nil {
		addTaskCount.WithLabelValues("error").Inc()
		return models.Task{}, err
	}

	addTaskCount.WithLabelValues("success").Inc()
	taskDescLength.Observe(float64(len(task.Description)))
	logger.Info(ctx, "Задача создана", "id", task.ID)
	return task, nil
}

// UpdateTask полностью заменяет задачу с данным id.
// id берется из пути, createdAt сохраняется прежний.
func (tm *TaskManager) UpdateTask(ctx context.Context, id int64, payload any) (models.Task, error) {
	task, _, err := schema.Decode(payload)
	if err != nil {
		updateTaskCount.WithLabelValues("invalid").Inc()
		return models.Task{}, err
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	i := indexOf(tm.tasks, id)
	if i < 0 {
		updateTaskCount.WithLabelValues("not_found").Inc()
		return models.Task{}, fmt.Errorf("задача %d: %w", id, ErrTaskNotFound)
	}

	task.ID = id
	task.CreatedAt = tm.tasks[i].CreatedAt

	next := models.CloneTasks(tm.tasks)
	next[i] = task
	if err := tm.commit(ctx, next); err != nil {
		updateTaskCount.WithLabelValues("error").Inc()
		return models.Task{}, err
	}

	updateTaskCount.WithLabelValues("success").Inc()
	logger.Info(ctx, "Задача обновлена", "id", id)
	return task, nil
}

// ToggleComplete инвертирует completed у задачи с данным id
func (tm *TaskManager) ToggleComplete(ctx context.Context, id int64) (models.Task, error) {
	current, err := tm.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	payload := map[string]any{
		"title":       current.Title,
		"description": current.Description,
		"completed":   !current.Completed,
	}
	if current.Priority != "" {
		payload["priority"] = string(current.Priority)
	}
	return tm.UpdateTask(ctx, id, payload)
}

func (tm *TaskManager) DeleteTask(ctx context.Context, id int64) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	i := indexOf(tm.tasks, id)
	if i < 0 {
		deleteTaskCount.WithLabelValues("not_found").Inc()
		return fmt.Errorf("задача %d: %w", id, ErrTaskNotFound)
	}

	next := make([]models.Task, 0, len(tm.tasks)-1)
	next = append(next, tm.tasks[:i]...)
	next = append(next, tm.tasks[i+1:]...)
	if err := tm.commit(ctx, next); err != nil {
		deleteTaskCount.WithLabelValues("error").Inc()
		return err
	}

	deleteTaskCount.WithLabelValues("success").Inc()
	logger.Info(ctx, "Задача удалена", "id", id)
	return nil
}

// commit сохраняет next и только после успешной записи делает его текущим.
// Вызывается под tm.mu.
func (tm *TaskManager) commit(ctx context.Context, next []models.Task) error {
	startTime := time.Now()
	err := tm.storage.Save(ctx, next)
	saveDuration.Observe(time.Since(startTime).Seconds())
	if err != nil {
		return fmt.Errorf("ошибка сохранения задач: %w", err)
	}

	tm.tasks = next
	storedTasks.Set(float64(len(next)))
	return nil
}

// indexOf первый индекс задачи с данным id или -1
func indexOf(tasks []models.Task, id int64) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func nextID(tasks []models.Task) int64 {
	var maxID int64
	for _, task := range tasks {
		if task.ID > maxID {
			maxID = task.ID
		}
	}
	return maxID + 1
}
