package storage

import (
	"context"
	"fmt"
	"sync"

	"todo-app/internal/models"
)

// Storage интерфейс для абстракции хранилища.
// Save всегда перезаписывает коллекцию целиком.
type Storage interface {
	Load(ctx context.Context) ([]models.Task, error)
	Save(ctx context.Context, tasks []models.Task) error

	// Закрытие соединения
	Close() error
}

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open создает хранилище по имени драйвера
func Open(driver, path string) (Storage, error) {
	switch driver {
	case DriverJSON, "":
		if path == "" {
			return nil, fmt.Errorf("не указан путь к JSON-файлу")
		}
		return NewJSONFileStorage(path), nil
	case DriverSQLite:
		if path == "" {
			return nil, fmt.Errorf("не указан путь к базе SQLite")
		}
		s, err := NewSQLiteStorage(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища: %q", driver)
	}
}

// In-memory хранилище для тестов и запуска без диска
type MemoryStorage struct {
	tasks []models.Task
	saves int
	mu    sync.Mutex
}

func NewMemoryStorage(tasks ...models.Task) *MemoryStorage {
	return &MemoryStorage{tasks: models.CloneTasks(tasks)}
}

func (m *MemoryStorage) Load(ctx context.Context) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneTasks(m.tasks), nil
}

func (m *MemoryStorage) Save(ctx context.Context, tasks []models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = models.CloneTasks(tasks)
	m.saves++
	return nil
}

// Saves число успешных сохранений
func (m *MemoryStorage) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryStorage) Close() error {
	return nil
}
