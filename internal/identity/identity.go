// Package identity loads objects by identifier and extracts identifiers from objects.
package identity

import (
	"fmt"
	"reflect"
	"sync"

	"record-mapper/internal/metadata"
)

// Loader finds the object of a class with the given identifier.
type Loader interface {
	Load(class metadata.ClassID, id any) (any, bool)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(class metadata.ClassID, id any) (any, bool)

// Load implements Loader.
func (f LoaderFunc) Load(class metadata.ClassID, id any) (any, bool) {
	return f(class, id)
}

// Identify returns the identifier of an object.
type Identify func(obj any) (any, bool)

// Field returns an Identify reading the named struct field, through pointers.
func Field(name string) Identify {
	return func(obj any) (any, bool) {
		rv := reflect.ValueOf(obj)
		for rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil, false
			}

			rv = rv.Elem()
		}

		if rv.Kind() != reflect.Struct {
			return nil, false
		}

		f := rv.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}

		return f.Interface(), true
	}
}

// Key normalizes an identifier so that equal integers of different types,
// or an integral float, match the same stored object.
func Key(id any) any {
	rv := reflect.ValueOf(id)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		if f := rv.Float(); f == float64(int64(f)) {
			return int64(f)
		}
	case reflect.String:
		return rv.String()
	}

	return fmt.Sprint(id)
}

// Memory is an in-memory Loader. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	objects map[metadata.ClassID]map[any]any
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[metadata.ClassID]map[any]any)}
}

// Put stores obj under its class and identifier.
func (m *Memory) Put(class metadata.ClassID, id, obj any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID, ok := m.objects[class]
	if !ok {
		byID = make(map[any]any)
		m.objects[class] = byID
	}

	byID[Key(id)] = obj
}

// Load implements Loader.
func (m *Memory) Load(class metadata.ClassID, id any) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[class][Key(id)]

	return obj, ok
}
