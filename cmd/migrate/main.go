package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"todo-app/internal/storage"
)

// Копирует коллекцию задач из одного хранилища в другое, сохраняя порядок.
// По умолчанию tasks.json -> data/todoapp.db.
func main() {
	from := flag.String("from", "tasks.json", "Source path")
	fromDriver := flag.String("from-driver", storage.DriverJSON, "Source driver (json|sqlite)")
	to := flag.String("to", "data/todoapp.db", "Destination path")
	toDriver := flag.String("to-driver", storage.DriverSQLite, "Destination driver (json|sqlite)")
	flag.Parse()

	n, err := migrate(context.Background(), *fromDriver, *from, *toDriver, *to)
	if err != nil {
		log.Fatal("❌ Ошибка миграции: ", err)
	}
	log.Printf("✅ Перенесено задач: %d (%s -> %s)", n, *from, *to)
}

func migrate(ctx context.Context, fromDriver, from, toDriver, to string) (int, error) {
	src, err := storage.Open(fromDriver, from)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	tasks, err := src.Load(ctx)
	if err != nil {
		return 0, err
	}

	// Убедимся что папка существует
	if dir := filepath.Dir(to); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, err
		}
	}

	dst, err := storage.Open(toDriver, to)
	if err != nil {
		return 0, err
	}
	defer dst.Close()

	if err := dst.Save(ctx, tasks); err != nil {
		return 0, err
	}
	return len(tasks), nil
}
