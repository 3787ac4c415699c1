package schema

import (
	"encoding/json"
	"errors"
	"math"

	"todo-app/internal/models"
)

// ErrInvalid возвращается, если значение не проходит проверку схемы
var ErrInvalid = errors.New("invalid task data")

// FieldType тип JSON-значения поля
type FieldType int

const (
	TypeString FieldType = iota
	TypeNumber
	TypeBoolean
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	}
	return "unknown"
}

// Field описание одного поля объекта
type Field struct {
	Name      string
	Type      FieldType
	Required  bool
	MinLength int
	Enum      []string
}

// Schema структурная схема JSON-объекта
type Schema struct {
	Fields               []Field
	AdditionalProperties bool
}

// Task схема тела запроса на создание и обновление задачи.
// createdAt сюда не входит: его назначает только сервер.
var Task = Schema{
	Fields: []Field{
		{Name: "id", Type: TypeNumber},
		{Name: "title", Type: TypeString, Required: true, MinLength: 1},
		{Name: "description", Type: TypeString, Required: true, MinLength: 1},
		{Name: "completed", Type: TypeBoolean, Required: true},
		{Name: "priority", Type: TypeString, Enum: priorityNames()},
	},
}

func priorityNames() []string {
	names := make([]string, 0, len(models.Priorities))
	for _, p := range models.Priorities {
		names = append(names, string(p))
	}
	return names
}

func (s Schema) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate проверяет декодированное JSON-значение. Нарушение схемы не ошибка,
// а просто false.
func (s Schema) Validate(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}

	for _, f := range s.Fields {
		val, present := obj[f.Name]
		if !present {
			if f.Required {
				return false
			}
			continue
		}
		if !f.accepts(val) {
			return false
		}
	}

	if !s.AdditionalProperties {
		for key := range obj {
			if _, known := s.field(key); !known {
				return false
			}
		}
	}
	return true
}

func (f Field) accepts(val any) bool {
	switch f.Type {
	case TypeString:
		str, ok := val.(string)
		if !ok || len(str) < f.MinLength {
			return false
		}
		if len(f.Enum) == 0 {
			return true
		}
		for _, allowed := range f.Enum {
			if str == allowed {
				return true
			}
		}
		return false
	case TypeNumber:
		_, ok := toFloat(val)
		return ok
	case TypeBoolean:
		_, ok := val.(bool)
		return ok
	}
	return false
}

func toFloat(val any) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Decode проверяет значение по схеме Task и собирает из него models.Task.
// Второе значение сообщает, что клиент передал id, который можно хранить
// как int64. Любое другое число схема принимает, но id тогда не переносится.
func Decode(v any) (models.Task, bool, error) {
	if !Task.Validate(v) {
		return models.Task{}, false, ErrInvalid
	}
	obj := v.(map[string]any)

	t := models.Task{
		Title:       obj["title"].(string),
		Description: obj["description"].(string),
		Completed:   obj["completed"].(bool),
	}
	if p, ok := obj["priority"].(string); ok {
		t.Priority = models.Priority(p)
	}

	raw, ok := obj["id"]
	if !ok {
		return t, false, nil
	}
	id, ok := storableID(raw)
	if !ok {
		return t, false, nil
	}
	t.ID = id
	return t, true, nil
}

// storableID целое число в пределах точности float64
func storableID(raw any) (int64, bool) {
	f, ok := toFloat(raw)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// JSONSchema возвращает ту же схему в виде документа JSON Schema
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	var required []string
	for _, f := range s.Fields {
		p := map[string]any{"type": f.Type.String()}
		if f.MinLength > 0 {
			p["minLength"] = f.MinLength
		}
		if len(f.Enum) > 0 {
			p["enum"] = f.Enum
		}
		props[f.Name] = p
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": s.AdditionalProperties,
	}
}
