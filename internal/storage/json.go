package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"todo-app/internal/models"
)

// JSONFileStorage хранит все задачи одним документом {"tasks": [...]}.
// Каждое сохранение полностью перезаписывает файл.
type JSONFileStorage struct {
	path string
	mu   sync.Mutex
}

func NewJSONFileStorage(path string) *JSONFileStorage {
	return &JSONFileStorage{path: path}
}

// Path путь к файлу
func (s *JSONFileStorage) Path() string {
	return s.path
}

// Load читает документ. Отсутствующий файл = пустая коллекция.
func (s *JSONFileStorage) Load(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.Task{}, nil
		}
		return nil, fmt.Errorf("ошибка чтения %s: %w", s.path, err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", s.path, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []models.Task{}
	}
	return doc.Tasks, nil
}

func (s *JSONFileStorage) Save(ctx context.Context, tasks []models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	data, err := json.Marshal(models.Document{Tasks: tasks})
	if err != nil {
		return fmt.Errorf("ошибка сериализации задач: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", s.path, err)
	}
	return nil
}

func (s *JSONFileStorage) Close() error {
	return nil
}
