package declare

import (
	"fmt"
	"reflect"
	"sync"

	"record-mapper/internal/metadata"
)

// TypeReader reads declarations from the struct tags of registered Go types.
// Accessor methods are looked up on the pointer method set, which only
// exposes exported methods.
type TypeReader struct {
	mu    sync.RWMutex
	types map[metadata.ClassID]reflect.Type
}

// NewTypeReader returns a reader with the given types registered.
func NewTypeReader(samples ...any) *TypeReader {
	r := &TypeReader{types: make(map[metadata.ClassID]reflect.Type)}
	r.Register(samples...)

	return r
}

// Register adds types to the reader. Samples may be values, pointers or reflect.Type.
// Registering a non-struct type panics, as it is a programming error.
func (r *TypeReader) Register(samples ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sample := range samples {
		t, ok := sample.(reflect.Type)
		if !ok {
			t = reflect.TypeOf(sample)
		}

		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}

		if t.Kind() != reflect.Struct || t.Name() == "" {
			panic(fmt.Sprintf("declare: cannot register %s, a named struct type is required", t))
		}

		r.types[metadata.ClassOf(t)] = t
	}
}

// Type returns the registered struct type of a class.
func (r *TypeReader) Type(class metadata.ClassID) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[class]

	return t, ok
}

// Read implements Reader.
func (r *TypeReader) Read(class metadata.ClassID) (*Declarations, error) {
	t, ok := r.Type(class)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}

	return ReadType(t)
}

// ReadType reads the declarations of a struct type.
func ReadType(t reflect.Type) (*Declarations, error) {
	class := metadata.ClassOf(t)

	decl := &Declarations{
		Class:   class,
		Methods: methodSet(reflect.PointerTo(t)),
	}

	for i := range t.NumField() {
		f := t.Field(i)

		tags, err := ParseTag(f.Tag)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", class, f.Name, err)
		}

		if f.Name == "_" {
			decl.ClassValidators = append(decl.ClassValidators, tags.Validators...)
			decl.ClassStrategies = append(decl.ClassStrategies, tags.Strategies...)

			continue
		}

		decl.Properties = append(decl.Properties, Property{
			Name:       f.Name,
			Direct:     f.IsExported(),
			Data:       tags.Data,
			Strategies: tags.Strategies,
			Validators: tags.Validators,
		})
	}

	return decl, nil
}

func methodSet(t reflect.Type) map[string]Method {
	methods := make(map[string]Method, t.NumMethod())

	for i := range t.NumMethod() {
		m := t.Method(i)
		methods[m.Name] = Method{
			Name:     m.Name,
			Exported: m.IsExported(),
			Params:   m.Type.NumIn() - 1, // receiver
			Variadic: m.Type.IsVariadic(),
		}
	}

	return methods
}
