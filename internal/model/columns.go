package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// jsonColumnType picks jsonb on postgres and text elsewhere
func jsonColumnType(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

func marshalColumn(v any, empty bool) (driver.Value, error) {
	if empty {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalColumn(value any, dst any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported json column source %T", value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// JSONList is an ordered list persisted as a JSON array column
type JSONList[T any] []T

// Value implements the driver.Valuer interface
func (l JSONList[T]) Value() (driver.Value, error) {
	return marshalColumn([]T(l), len(l) == 0)
}

// Scan implements the sql.Scanner interface
func (l *JSONList[T]) Scan(value any) error {
	var out []T
	if err := unmarshalColumn(value, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// GormDBDataType implements schema.GormDBDataTypeInterface
func (JSONList[T]) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// Set is an unordered collection of distinct values persisted as a JSON array.
// Insertion order is kept so reads are stable.
type Set[T comparable] []T

// Value implements the driver.Valuer interface
func (s Set[T]) Value() (driver.Value, error) {
	return marshalColumn([]T(s), len(s) == 0)
}

// Scan implements the sql.Scanner interface. Duplicates in stored data are collapsed.
func (s *Set[T]) Scan(value any) error {
	var out []T
	if err := unmarshalColumn(value, &out); err != nil {
		return err
	}
	*s = nil
	for _, v := range out {
		s.Add(v)
	}
	return nil
}

// GormDBDataType implements schema.GormDBDataTypeInterface
func (Set[T]) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// Has reports membership
func (s Set[T]) Has(v T) bool {
	for _, existing := range s {
		if existing == v {
			return true
		}
	}
	return false
}

// Add inserts v and reports whether the set changed
func (s *Set[T]) Add(v T) bool {
	if s.Has(v) {
		return false
	}
	*s = append(*s, v)
	return true
}

// Remove deletes v and reports whether the set changed
func (s *Set[T]) Remove(v T) bool {
	for i, existing := range *s {
		if existing == v {
			*s = append((*s)[:i:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of members
func (s Set[T]) Len() int {
	return len(s)
}

// NewSet builds a set from values, dropping duplicates
func NewSet[T comparable](values ...T) Set[T] {
	var s Set[T]
	for _, v := range values {
		s.Add(v)
	}
	return s
}
