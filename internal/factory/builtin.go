package factory

import (
	"fmt"
	"reflect"

	"record-mapper/internal/metadata"
	"record-mapper/internal/strategy"
	"record-mapper/internal/validate"
)

// Builtin rule names.
const (
	RuleChain             = "chain"
	RuleCollection        = "collection"
	RuleFieldData         = "field_data"
	RuleTypeCompliant     = "type_compliant"
	RuleIdentifier        = "identifier"
	RuleNotNull           = "not_null"
	RuleWhatever          = "whatever"
	RulePlayground        = "playground"
	RuleSerializableValue = "serializable_value"
	RuleScalar            = "scalar"
	RuleNoArgObject       = "no_arg_object"
	RuleNoArgObjectList   = "no_arg_object_list"
	RuleIdentifiable      = "identifiable_value"
	RuleIdentifiableList  = "identifiable_value_list"
)

var builtinValidators = map[string]ValidatorFunc{
	RuleChain:             chainValidator,
	RuleCollection:        collectionValidator,
	RuleFieldData:         fieldDataValidator,
	RuleTypeCompliant:     typeCompliantValidator,
	RuleIdentifier:        identifierValidator,
	RuleNotNull:           leafValidator(validate.NotNull()),
	RuleWhatever:          leafValidator(validate.Whatever()),
	RulePlayground:        playgroundValidator,
	RuleSerializableValue: serializableValidator,
	RuleScalar:            scalarValidator,
}

var builtinStrategies = map[string]StrategyFunc{
	RuleWhatever:          leafStrategy(strategy.Whatever()),
	RuleScalar:            scalarStrategy,
	RuleFieldData:         fieldDataStrategy,
	RuleNoArgObject:       noArgObjectStrategy,
	RuleNoArgObjectList:   list(noArgObjectStrategy),
	RuleIdentifiable:      identifiableStrategy,
	RuleIdentifiableList:  list(identifiableStrategy),
	RuleSerializableValue: serializableStrategy,
}

func leafValidator(v validate.Validator) ValidatorFunc {
	return func(*Context, metadata.Options) (validate.Validator, error) {
		return v, nil
	}
}

func chainValidator(ctx *Context, opts metadata.Options) (validate.Validator, error) {
	raw, ok := opts[OptLinks]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingOption, OptLinks)
	}

	refs, err := metadata.ParseValidatorList(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidOption, OptLinks, err)
	}

	links, err := ctx.Links(refs)
	if err != nil {
		return nil, err
	}

	return validate.Chain(links...), nil
}

// nested resolves the validator named by the rule option, or the record
// validator of the target class when there is none.
func nested(ctx *Context, opts metadata.Options, key string) (validate.Validator, error) {
	ref, ok, err := ruleOption(opts, key)
	if err != nil {
		return nil, err
	}

	if ok {
		return ctx.Validator(ref)
	}

	target, err := ctx.Target(opts)
	if err != nil {
		return nil, err
	}

	return ctx.RecordValidator(target)
}

func collectionValidator(ctx *Context, opts metadata.Options) (validate.Validator, error) {
	item, err := nested(ctx, opts, OptItem)
	if err != nil {
		return nil, err
	}

	return validate.Collection(item), nil
}

func fieldDataValidator(ctx *Context, opts metadata.Options) (validate.Validator, error) {
	target, err := ctx.Target(opts)
	if err != nil {
		return nil, err
	}

	return ctx.RecordValidator(target)
}

func typeCompliantValidator(ctx *Context, opts metadata.Options) (validate.Validator, error) {
	inner, err := nested(ctx, opts, OptRule)
	if err != nil {
		return nil, err
	}

	return validate.TypeCompliant(inner), nil
}

func identifierValidator(ctx *Context, opts metadata.Options) (validate.Validator, error) {
	target, err := ctx.Target(opts)
	if err != nil {
		return nil, err
	}

	_, loader := ctx.Registry().Identity(target.Class)
	if loader == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoLoader, target.Class)
	}

	return validate.Identifier(loader, target.Class), nil
}

func playgroundValidator(ctx *Context, opts metadata.Options) (validate.Validator, error) {
	rule, err := requiredString(opts, OptRule)
	if err != nil {
		return nil, err
	}

	return validate.Playground(ctx.Registry().Host(), rule), nil
}

// hasTarget reports whether Target can find a class without failing.
func hasTarget(ctx *Context, opts metadata.Options) bool {
	_, ok := opts[OptClass]

	return ok || structOf(ctx.Type) != nil || ctx.Field == "" && !ctx.Class.IsZero()
}

func serializableValidator(ctx *Context, opts metadata.Options) (validate.Validator, error) {
	_, hasRule := opts[OptRule]
	if !hasRule && !hasTarget(ctx, opts) {
		return validate.SerializableValue(validate.Whatever(), validate.UnserializeJSON), nil
	}

	inner, err := nested(ctx, opts, OptRule)
	if err != nil {
		return nil, err
	}

	return validate.SerializableValue(inner, validate.UnserializeJSON), nil
}

func scalarValidator(_ *Context, opts metadata.Options) (validate.Validator, error) {
	kind, err := kindOption(opts, OptType, true)
	if err != nil {
		return nil, err
	}

	allowed, err := categoryOption(opts)
	if err != nil {
		return nil, err
	}

	return validate.Scalar(kind, allowed), nil
}

func leafStrategy(s strategy.Strategy) StrategyFunc {
	return func(*Context, metadata.Options) (strategy.Strategy, error) {
		return s, nil
	}
}

func scalarStrategy(_ *Context, opts metadata.Options) (strategy.Strategy, error) {
	kind, err := kindOption(opts, OptType, true)
	if err != nil {
		return nil, err
	}

	raw, err := kindOption(opts, OptRaw, false)
	if err != nil {
		return nil, err
	}

	allowed, err := categoryOption(opts)
	if err != nil {
		return nil, err
	}

	return strategy.Scalar(kind, raw, allowed), nil
}

func fieldDataStrategy(ctx *Context, opts metadata.Options) (strategy.Strategy, error) {
	target, err := ctx.Target(opts)
	if err != nil {
		return nil, err
	}

	return ctx.FieldData(target)
}

func object(ctx *Context, opts metadata.Options) (Target, strategy.Strategy, error) {
	target, err := ctx.Target(opts)
	if err != nil {
		return Target{}, nil, err
	}

	fields, err := ctx.FieldData(target)
	if err != nil {
		return Target{}, nil, err
	}

	return target, strategy.NoArgObject(target.Type, fields), nil
}

func noArgObjectStrategy(ctx *Context, opts metadata.Options) (strategy.Strategy, error) {
	_, s, err := object(ctx, opts)

	return s, err
}

func identifiableStrategy(ctx *Context, opts metadata.Options) (strategy.Strategy, error) {
	target, inner, err := object(ctx, opts)
	if err != nil {
		return nil, err
	}

	inline, err := boolOption(opts, OptInline)
	if err != nil {
		return nil, err
	}

	identify, loader := ctx.Registry().Identity(target.Class)
	if inline {
		identify = nil
	}

	return strategy.IdentifiableValue(target.Class, inner, identify, loader), nil
}

// list applies the element strategy built by elem to every item of a list.
// Hydrated lists have the field's element type, or pointers to the target
// type when the field type is unknown.
func list(elem StrategyFunc) StrategyFunc {
	return func(ctx *Context, opts metadata.Options) (strategy.Strategy, error) {
		s, err := elem(ctx, opts)
		if err != nil {
			return nil, err
		}

		elemType := ctx.ListElem()
		if elemType == nil {
			target, err := ctx.Target(opts)
			if err != nil {
				return nil, err
			}

			if target.Type != nil {
				elemType = reflect.PointerTo(target.Type)
			}
		}

		return strategy.List(s, elemType), nil
	}
}

func serializableStrategy(ctx *Context, opts metadata.Options) (strategy.Strategy, error) {
	ref, ok, err := ruleOption(opts, OptRule)
	if err != nil {
		return nil, err
	}

	var inner strategy.Strategy

	switch {
	case ok:
		inner, err = ctx.Strategy(ref)
	case hasTarget(ctx, opts):
		inner, err = noArgObjectStrategy(ctx, opts)
	default:
		inner = strategy.Whatever()
	}

	if err != nil {
		return nil, err
	}

	return strategy.SerializableValue(inner), nil
}
