package factory

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/zap"

	"record-mapper/internal/metadata"
	"record-mapper/internal/provider"
	"record-mapper/internal/strategy"
	"record-mapper/internal/validate"
)

// Provider is the metadata a Builder wires rules from. *provider.Provider
// implements it.
type Provider interface {
	ClassFields(class metadata.ClassID, subset string) (iter.Seq[provider.FieldAccess], error)
	FieldStrategy(class metadata.ClassID, subset, field string) (*metadata.RuleRef, error)
	FieldValidators(class metadata.ClassID, subset, field string) ([]metadata.ValidatorRef, error)
	FieldNullable(class metadata.ClassID, subset, field string) (bool, error)
	ClassStrategy(class metadata.ClassID, subset string) (metadata.RuleRef, error)
	ClassValidator(class metadata.ClassID, subset string) (metadata.RuleRef, error)
}

// Option configures a Builder.
type Option func(*Builder)

// WithShape sets the container FieldData strategies extract into.
func WithShape(shape strategy.Shape) Option {
	return func(b *Builder) { b.shape = shape }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type nodeKey struct {
	class  metadata.ClassID
	subset string
}

// Builder wires rule trees from metadata. Built trees are memoized per class
// and subset. It is safe for concurrent use.
type Builder struct {
	registry *Registry
	provider Provider
	shape    strategy.Shape
	logger   *zap.Logger

	mu      sync.Mutex
	records map[nodeKey]validate.Validator
	fields  map[nodeKey]strategy.Strategy
	objects map[nodeKey]strategy.Strategy
}

// New returns a builder resolving rule names from registry.
func New(registry *Registry, source Provider, opts ...Option) *Builder {
	b := &Builder{
		registry: registry,
		provider: source,
		logger:   zap.NewNop(),
		records:  make(map[nodeKey]validate.Validator),
		fields:   make(map[nodeKey]strategy.Strategy),
		objects:  make(map[nodeKey]strategy.Strategy),
	}

	for _, opt := range opts {
		opt(b)
	}

	b.logger = b.logger.Named("factory")

	return b
}

// Registry returns the registry rules are resolved from.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// Resolve turns a rule name and options into a validate.Validator or a
// strategy.Strategy, depending on kind. Rules referring to a class need a
// "class" option here, as there is no class being wired.
func (b *Builder) Resolve(kind Kind, name string, options metadata.Options) (any, error) {
	ref := metadata.RuleRef{Name: name, Options: options}

	var out any

	err := b.locked(func() error {
		var err error

		switch kind {
		case KindValidator:
			out, err = b.validator(Context{b: b}, ref)
		case KindStrategy:
			out, err = b.strategy(Context{b: b}, ref)
		default:
			err = fmt.Errorf("%w: %s %q", ErrUnknownRule, kind, name)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Validator returns the record validator of a class subset: every field's
// validators, then the whole-object validator when the fields are valid.
func (b *Builder) Validator(class metadata.ClassID, subset string) (validate.Validator, error) {
	var out validate.Validator

	err := b.locked(func() error {
		var err error
		out, err = b.record(class, subset)

		return err
	})

	return out, err
}

// Strategy returns the object strategy of a class subset: its field mapping
// wrapped in the declared whole-object strategy, if any.
func (b *Builder) Strategy(class metadata.ClassID, subset string) (strategy.Strategy, error) {
	var out strategy.Strategy

	err := b.locked(func() error {
		var err error
		out, err = b.object(class, subset)

		return err
	})

	return out, err
}

// locked runs build under the builder lock and rolls the memo back when it
// fails, so no half-wired node survives.
func (b *Builder) locked(build func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	records, fields, objects := maps.Clone(b.records), maps.Clone(b.fields), maps.Clone(b.objects)

	if err := build(); err != nil {
		b.records, b.fields, b.objects = records, fields, objects
		b.logger.Debug("wiring failed", zap.Error(err))

		return err
	}

	return nil
}

func (b *Builder) validator(ctx Context, ref metadata.RuleRef) (validate.Validator, error) {
	fn, ok := b.registry.Validator(ref.Name)
	if !ok {
		return nil, fmt.Errorf("%w: validator %q", ErrUnknownRule, ref.Name)
	}

	v, err := fn(&ctx, ref.Options)
	if err != nil {
		return nil, fmt.Errorf("validator %q: %w", ref.Name, err)
	}

	return v, nil
}

func (b *Builder) strategy(ctx Context, ref metadata.RuleRef) (strategy.Strategy, error) {
	fn, ok := b.registry.Strategy(ref.Name)
	if !ok {
		return nil, fmt.Errorf("%w: strategy %q", ErrUnknownRule, ref.Name)
	}

	s, err := fn(&ctx, ref.Options)
	if err != nil {
		return nil, fmt.Errorf("strategy %q: %w", ref.Name, err)
	}

	return s, nil
}

// links orders validator references by descending priority, keeping
// declaration order among equals, and resolves them. A blocking not_null
// goes first when notNull is set.
func (b *Builder) links(ctx Context, refs []metadata.ValidatorRef, notNull bool) ([]validate.Link, error) {
	sorted := slices.Clone(refs)
	slices.SortStableFunc(sorted, func(x, y metadata.ValidatorRef) int {
		return cmp.Compare(y.Priority, x.Priority)
	})

	links := make([]validate.Link, 0, len(sorted)+1)
	if notNull {
		links = append(links, validate.Link{Validator: validate.NotNull(), Blocker: true})
	}

	for _, ref := range sorted {
		v, err := b.validator(ctx, ref.RuleRef)
		if err != nil {
			return nil, err
		}

		links = append(links, validate.Link{Validator: v, Blocker: ref.Blocker})
	}

	return links, nil
}

func (b *Builder) record(class metadata.ClassID, subset string) (validate.Validator, error) {
	key := nodeKey{class: class, subset: subset}
	if v, ok := b.records[key]; ok {
		return v, nil
	}

	d := &deferredValidator{}
	b.records[key] = d

	v, err := b.buildRecord(class, subset)
	if err != nil {
		return nil, err
	}

	d.target = v
	b.records[key] = v

	return v, nil
}

func (b *Builder) buildRecord(class metadata.ClassID, subset string) (validate.Validator, error) {
	fields, err := b.provider.ClassFields(class, subset)
	if err != nil {
		return nil, err
	}

	typ, _ := b.registry.Type(class)

	var rules []validate.FieldRule

	for f := range fields {
		refs, err := b.provider.FieldValidators(class, subset, f.Name)
		if err != nil {
			return nil, err
		}

		nullable, err := b.provider.FieldNullable(class, subset, f.Name)
		if err != nil {
			return nil, err
		}

		ctx := Context{Class: class, Subset: subset, Field: f.Name, Type: fieldType(typ, f), b: b}

		links, err := b.links(ctx, refs, !nullable)
		if err != nil {
			return nil, metadata.NewError(class, subset, f.Name, err)
		}

		rules = append(rules, validate.FieldRule{Name: f.Name, Validator: validate.Chain(links...)})
	}

	ref, err := b.provider.ClassValidator(class, subset)
	if err != nil {
		return nil, err
	}

	whole, err := b.validator(Context{Class: class, Subset: subset, b: b}, ref)
	if err != nil {
		return nil, metadata.NewError(class, subset, "", err)
	}

	b.logger.Debug("record validator wired",
		zap.Stringer("class", class), zap.String("subset", subset), zap.Int("fields", len(rules)))

	return validate.Chain(
		validate.Link{Validator: validate.FieldData(rules...), Blocker: true},
		validate.Link{Validator: validate.TypeCompliant(whole)},
	), nil
}

func (b *Builder) fieldData(t Target) (strategy.Strategy, error) {
	key := nodeKey{class: t.Class, subset: t.Subset}
	if s, ok := b.fields[key]; ok {
		return s, nil
	}

	typ := t.Type
	if typ == nil {
		var ok bool
		if typ, ok = b.registry.Type(t.Class); !ok {
			return nil, metadata.NewError(t.Class, t.Subset, "", fmt.Errorf("%w: %s", ErrUnknownType, t.Class))
		}
	}

	d := &deferredStrategy{}
	b.fields[key] = d

	s, err := b.buildFieldData(t.Class, t.Subset, typ)
	if err != nil {
		return nil, err
	}

	d.target = s
	b.fields[key] = s

	return s, nil
}

func (b *Builder) buildFieldData(class metadata.ClassID, subset string, typ reflect.Type) (strategy.Strategy, error) {
	fields, err := b.provider.ClassFields(class, subset)
	if err != nil {
		return nil, err
	}

	var out []strategy.Field

	for f := range fields {
		get, set, err := strategy.Bind(typ, metadata.Accessors{Getter: f.Getter, Setter: f.Setter})
		if err != nil {
			return nil, metadata.NewError(class, subset, f.Name, err)
		}

		field := strategy.Field{Name: f.Name, Get: get, Set: set}

		ref, err := b.provider.FieldStrategy(class, subset, f.Name)
		if err != nil {
			return nil, err
		}

		if ref != nil {
			ctx := Context{Class: class, Subset: subset, Field: f.Name, Type: fieldType(typ, f), b: b}

			if field.Strategy, err = b.strategy(ctx, *ref); err != nil {
				return nil, metadata.NewError(class, subset, f.Name, err)
			}
		}

		out = append(out, field)
	}

	b.logger.Debug("field mapping wired",
		zap.Stringer("class", class), zap.String("subset", subset), zap.Int("fields", len(out)))

	return strategy.FieldData(typ, b.shape, out...), nil
}

func (b *Builder) object(class metadata.ClassID, subset string) (strategy.Strategy, error) {
	key := nodeKey{class: class, subset: subset}
	if s, ok := b.objects[key]; ok {
		return s, nil
	}

	ref, err := b.provider.ClassStrategy(class, subset)
	if err != nil {
		return nil, err
	}

	var s strategy.Strategy

	if ref.Name == provider.RuleWhatever {
		s, err = b.fieldData(Target{Class: class, Subset: subset})
	} else {
		s, err = b.strategy(Context{Class: class, Subset: subset, b: b}, ref)
		if err != nil {
			err = metadata.NewError(class, subset, "", err)
		}
	}

	if err != nil {
		return nil, err
	}

	b.objects[key] = s

	return s, nil
}

// fieldType returns the Go type of a field from its getter, else its setter.
func fieldType(typ reflect.Type, f provider.FieldAccess) reflect.Type {
	if typ == nil {
		return nil
	}

	switch f.Getter.Kind {
	case metadata.AccessDirect:
		if sf, ok := typ.FieldByName(f.Getter.Name); ok {
			return sf.Type
		}
	case metadata.AccessMethod:
		if m, ok := reflect.PointerTo(typ).MethodByName(f.Getter.Name); ok && m.Type.NumOut() > 0 {
			return m.Type.Out(0)
		}
	}

	switch f.Setter.Kind {
	case metadata.AccessDirect:
		if sf, ok := typ.FieldByName(f.Setter.Name); ok {
			return sf.Type
		}
	case metadata.AccessMethod:
		if m, ok := reflect.PointerTo(typ).MethodByName(f.Setter.Name); ok && m.Type.NumIn() > 1 {
			return m.Type.In(1)
		}
	}

	return nil
}

// deferredValidator stands in for a record validator while it is wired.
type deferredValidator struct {
	target validate.Validator
}

func (d *deferredValidator) Validate(value any) validate.Report {
	return d.target.Validate(value)
}

// deferredStrategy stands in for a field mapping while it is wired.
type deferredStrategy struct {
	target strategy.Strategy
}

func (d *deferredStrategy) Extract(from any) (any, error) {
	return d.target.Extract(from)
}

func (d *deferredStrategy) Hydrate(from, to any) (any, error) {
	return d.target.Hydrate(from, to)
}
