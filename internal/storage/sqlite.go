package storage

import (
	"context"
	"database/sql"
	"fmt"

	"todo-app/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStorage хранит коллекцию в таблице tasks.
// position сохраняет порядок задач, id не уникален.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	createTasksTable := `
	CREATE TABLE IF NOT EXISTS tasks (
		position INTEGER PRIMARY KEY,
		id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		priority TEXT,
		created_at INTEGER NOT NULL
	)`

	if _, err := db.Exec(createTasksTable); err != nil {
		return fmt.Errorf("ошибка создания таблицы tasks: %w", err)
	}
	return nil
}

// Закрытие соединения
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) Load(ctx context.Context) ([]models.Task, error) {
	query := `
	SELECT id, title, description, completed, priority, created_at
	FROM tasks ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// Вспомогательная функция для сканирования задач
func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		var priority sql.NullString

		err := rows.Scan(
			&task.ID, &task.Title, &task.Description,
			&task.Completed, &priority, &task.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if priority.Valid {
			task.Priority = models.Priority(priority.String)
		}

		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// Save заменяет содержимое таблицы одной транзакцией
func (s *SQLiteStorage) Save(ctx context.Context, tasks []models.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("ошибка очистки таблицы tasks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO tasks (position, id, title, description, completed, priority, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, task := range tasks {
		var priority any
		if task.Priority != "" {
			priority = string(task.Priority)
		}
		_, err := stmt.ExecContext(ctx,
			i, task.ID, task.Title, task.Description,
			task.Completed, priority, task.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("ошибка вставки задачи %d: %w", task.ID, err)
		}
	}

	return tx.Commit()
}
