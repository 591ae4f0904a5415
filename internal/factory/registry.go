package factory

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"

	"record-mapper/internal/common"
	"record-mapper/internal/identity"
	"record-mapper/internal/metadata"
	"record-mapper/internal/strategy"
	"record-mapper/internal/validate"
)

var (
	ErrUnknownRule   = errors.New("unknown rule")
	ErrMissingOption = errors.New("missing rule option")
	ErrInvalidOption = errors.New("invalid rule option")
	ErrUnknownType   = errors.New("no Go type registered for class")
	ErrNoLoader      = errors.New("no loader registered for class")
)

// Kind selects the namespace a rule name is looked up in.
type Kind int

const (
	KindValidator Kind = iota
	KindStrategy
)

// String returns a human-readable kind.
func (k Kind) String() string {
	switch k {
	case KindValidator:
		return "validator"
	case KindStrategy:
		return "strategy"
	default:
		return common.UnknownStr
	}
}

// ValidatorFunc builds a validator from its options.
type ValidatorFunc func(ctx *Context, opts metadata.Options) (validate.Validator, error)

// StrategyFunc builds a strategy from its options.
type StrategyFunc func(ctx *Context, opts metadata.Options) (strategy.Strategy, error)

// Registry holds named rule constructors and per-class collaborators.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]ValidatorFunc
	strategies map[string]StrategyFunc
	types      map[metadata.ClassID]reflect.Type
	identify   map[metadata.ClassID]identity.Identify
	loaders    map[metadata.ClassID]identity.Loader
	loader     identity.Loader
	host       *validator.Validate
}

// NewRegistry returns a registry holding the builtin rules.
func NewRegistry() *Registry {
	r := &Registry{
		validators: make(map[string]ValidatorFunc),
		strategies: make(map[string]StrategyFunc),
		types:      make(map[metadata.ClassID]reflect.Type),
		identify:   make(map[metadata.ClassID]identity.Identify),
		loaders:    make(map[metadata.ClassID]identity.Loader),
		host:       validator.New(validator.WithRequiredStructEnabled()),
	}

	for name, fn := range builtinValidators {
		r.validators[name] = fn
	}

	for name, fn := range builtinStrategies {
		r.strategies[name] = fn
	}

	return r
}

// AddValidator registers a validator constructor, replacing any previous one.
func (r *Registry) AddValidator(name string, fn ValidatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.validators[name] = fn
}

// AddStrategy registers a strategy constructor, replacing any previous one.
func (r *Registry) AddStrategy(name string, fn StrategyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.strategies[name] = fn
}

// Validator returns the validator constructor registered under name.
func (r *Registry) Validator(name string) (ValidatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.validators[name]

	return fn, ok
}

// Strategy returns the strategy constructor registered under name.
func (r *Registry) Strategy(name string) (StrategyFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.strategies[name]

	return fn, ok
}

// Has reports whether a rule of that kind is registered.
func (r *Registry) Has(kind Kind, name string) bool {
	if kind == KindStrategy {
		_, ok := r.Strategy(name)
		return ok
	}

	_, ok := r.Validator(name)

	return ok
}

// Names returns the sorted rule names of a kind.
func (r *Registry) Names(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string

	if kind == KindStrategy {
		for name := range r.strategies {
			names = append(names, name)
		}
	} else {
		for name := range r.validators {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// AddType registers the Go struct types of classes. Samples may be values,
// pointers or reflect.Type. A non-struct sample panics.
func (r *Registry) AddType(samples ...any) {
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
			panic(fmt.Sprintf("factory: cannot register %s, a named struct type is required", t))
		}

		r.types[metadata.ClassOf(t)] = t
	}
}

// Type returns the Go type registered for a class.
func (r *Registry) Type(class metadata.ClassID) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[class]

	return t, ok
}

// AddIdentity registers how objects of a class are identified and loaded.
// Either function may be nil.
func (r *Registry) AddIdentity(class metadata.ClassID, identify identity.Identify, loader identity.Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if identify != nil {
		r.identify[class] = identify
	}

	if loader != nil {
		r.loaders[class] = loader
	}
}

// SetLoader sets the loader used for classes without a dedicated one.
func (r *Registry) SetLoader(loader identity.Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loader = loader
}

// Identity returns the identifier function and loader of a class.
func (r *Registry) Identity(class metadata.ClassID) (identity.Identify, identity.Loader) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loader, ok := r.loaders[class]
	if !ok {
		loader = r.loader
	}

	return r.identify[class], loader
}

// SetHost replaces the go-playground validator used by the playground rule.
func (r *Registry) SetHost(v *validator.Validate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.host = v
}

// Host returns the go-playground validator used by the playground rule.
func (r *Registry) Host() *validator.Validate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.host
}
