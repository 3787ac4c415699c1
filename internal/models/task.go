package models

// Priority уровень приоритета задачи
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities допустимые значения приоритета, в порядке возрастания
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid сообщает, входит ли значение в перечисление
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Task единственная сущность сервиса.
// CreatedAt хранится в миллисекундах Unix и назначается сервером.
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
	Priority    Priority `json:"priority,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}

// Document формат файла на диске: {"tasks": [...]}
type Document struct {
	Tasks []Task `json:"tasks"`
}

// CloneTasks возвращает независимую копию среза
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
