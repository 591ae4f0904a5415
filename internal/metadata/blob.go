package metadata

import (
	"fmt"
	"maps"
	"slices"
)

// Blob keys.
const (
	keyClass           = "class"
	keySubset          = "subset"
	keyFields          = "fields"
	keyName            = "name"
	keyGetter          = "getter"
	keySetter          = "setter"
	keyKind            = "kind"
	keyStrategy        = "strategy"
	keyValidators      = "validators"
	keyNullable        = "nullable"
	keyOptions         = "options"
	keyPriority        = "priority"
	keyBlocker         = "blocker"
	keyClassValidators = "class_validators"
	keyClassStrategy   = "class_strategy"
)

// Encode converts the metadata of every subset of a class into a Value.
// Fields are stored as a list so declaration order survives persistence.
func Encode(subsets map[string]*ClassMetadata) (Value, error) {
	out := make(map[string]Value, len(subsets))

	for subset, md := range subsets {
		v, err := encodeClass(md)
		if err != nil {
			return Value{}, fmt.Errorf("subset %q: %w", subset, err)
		}

		out[subset] = v
	}

	return Map(out), nil
}

func encodeClass(md *ClassMetadata) (Value, error) {
	fields := make([]Value, 0, len(md.Fields))

	for _, name := range md.Fields {
		acc := md.Accessors[name]

		strategy, err := encodeRuleRef(md.Strategies[name])
		if err != nil {
			return Value{}, fmt.Errorf("field %q strategy: %w", name, err)
		}

		validators, err := encodeValidators(md.Validators[name])
		if err != nil {
			return Value{}, fmt.Errorf("field %q validators: %w", name, err)
		}

		fields = append(fields, Map(map[string]Value{
			keyName:       String(name),
			keyGetter:     encodeAccessor(acc.Getter),
			keySetter:     encodeAccessor(acc.Setter),
			keyStrategy:   strategy,
			keyValidators: validators,
			keyNullable:   Bool(md.Nullable[name]),
		}))
	}

	classValidators, err := encodeValidators(md.ClassValidators())
	if err != nil {
		return Value{}, fmt.Errorf("class validators: %w", err)
	}

	classStrategy, err := encodeRuleRef(md.ClassStrategy)
	if err != nil {
		return Value{}, fmt.Errorf("class strategy: %w", err)
	}

	return Map(map[string]Value{
		keyClass:           String(md.Class.String()),
		keySubset:          String(md.Subset),
		keyFields:          List(fields...),
		keyClassValidators: classValidators,
		keyClassStrategy:   classStrategy,
	}), nil
}

func encodeAccessor(a Accessor) Value {
	return Map(map[string]Value{
		keyKind: String(a.Kind.String()),
		keyName: String(a.Name),
	})
}

func encodeRuleRef(ref *RuleRef) (Value, error) {
	if ref == nil {
		return Null(), nil
	}

	return encodeRule(*ref)
}

func encodeRule(ref RuleRef) (Value, error) {
	options, err := FromAny(map[string]any(ref.Options))
	if err != nil {
		return Value{}, err
	}

	if options.IsNull() {
		options = Map(nil)
	}

	return Map(map[string]Value{
		keyName:    String(ref.Name),
		keyOptions: options,
	}), nil
}

func encodeValidators(refs []ValidatorRef) (Value, error) {
	items := make([]Value, 0, len(refs))

	for _, ref := range refs {
		v, err := encodeRule(ref.RuleRef)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", ref.Name, err)
		}

		m, _ := v.AsMap()
		m[keyPriority] = Int(int64(ref.Priority))
		m[keyBlocker] = Bool(ref.Blocker)
		items = append(items, v)
	}

	return List(items...), nil
}

// Decode converts a Value produced by Encode back into per-subset metadata.
func Decode(v Value) (map[string]*ClassMetadata, error) {
	subsets, ok := v.AsMap()
	if !ok {
		return nil, fmt.Errorf("%w: expected map of subsets, got %s", ErrMalformedBlob, v.Kind())
	}

	out := make(map[string]*ClassMetadata, len(subsets))

	for _, subset := range slices.Sorted(maps.Keys(subsets)) {
		md, err := decodeClass(subsets[subset])
		if err != nil {
			return nil, fmt.Errorf("subset %q: %w", subset, err)
		}

		if md.Subset != subset {
			return nil, fmt.Errorf("%w: subset %q stored under %q", ErrMalformedBlob, md.Subset, subset)
		}

		out[subset] = md
	}

	return out, nil
}

func decodeClass(v Value) (*ClassMetadata, error) {
	class, ok := v.Get(keyClass).AsString()
	if !ok {
		return nil, fmt.Errorf("%w: missing class", ErrMalformedBlob)
	}

	subset, ok := v.Get(keySubset).AsString()
	if !ok {
		return nil, fmt.Errorf("%w: missing subset", ErrMalformedBlob)
	}

	md := NewClassMetadata(ParseClassID(class), subset)

	fields, ok := v.Get(keyFields).AsList()
	if !ok {
		return nil, fmt.Errorf("%w: missing fields", ErrMalformedBlob)
	}

	for _, f := range fields {
		if err := decodeField(md, f); err != nil {
			return nil, err
		}
	}

	classValidators, err := decodeValidators(v.Get(keyClassValidators))
	if err != nil {
		return nil, fmt.Errorf("class validators: %w", err)
	}

	if len(classValidators) > 0 {
		md.Validators[ClassKey] = classValidators
	}

	md.ClassStrategy, err = decodeRuleRef(v.Get(keyClassStrategy))
	if err != nil {
		return nil, fmt.Errorf("class strategy: %w", err)
	}

	return md, nil
}

func decodeField(md *ClassMetadata, v Value) error {
	name, ok := v.Get(keyName).AsString()
	if !ok {
		return fmt.Errorf("%w: field without name", ErrMalformedBlob)
	}

	if md.HasField(name) {
		return fmt.Errorf("%w: field %q repeated", ErrMalformedBlob, name)
	}

	getter, err := decodeAccessor(v.Get(keyGetter))
	if err != nil {
		return fmt.Errorf("field %q getter: %w", name, err)
	}

	setter, err := decodeAccessor(v.Get(keySetter))
	if err != nil {
		return fmt.Errorf("field %q setter: %w", name, err)
	}

	strategy, err := decodeRuleRef(v.Get(keyStrategy))
	if err != nil {
		return fmt.Errorf("field %q strategy: %w", name, err)
	}

	validators, err := decodeValidators(v.Get(keyValidators))
	if err != nil {
		return fmt.Errorf("field %q validators: %w", name, err)
	}

	nullable, _ := v.Get(keyNullable).AsBool()

	md.Fields = append(md.Fields, name)
	md.Accessors[name] = Accessors{Getter: getter, Setter: setter}
	md.Strategies[name] = strategy
	md.Nullable[name] = nullable

	if len(validators) > 0 {
		md.Validators[name] = validators
	}

	return nil
}

func decodeAccessor(v Value) (Accessor, error) {
	kindStr, _ := v.Get(keyKind).AsString()

	kind, ok := parseAccessKind(kindStr)
	if !ok {
		return Accessor{}, fmt.Errorf("%w: accessor kind %q", ErrMalformedBlob, kindStr)
	}

	name, _ := v.Get(keyName).AsString()

	return Accessor{Kind: kind, Name: name}, nil
}

func decodeRuleRef(v Value) (*RuleRef, error) {
	if v.IsNull() {
		return nil, nil
	}

	ref, err := decodeRule(v)
	if err != nil {
		return nil, err
	}

	return &ref, nil
}

func decodeRule(v Value) (RuleRef, error) {
	name, ok := v.Get(keyName).AsString()
	if !ok || name == "" {
		return RuleRef{}, fmt.Errorf("%w: rule without name", ErrMalformedBlob)
	}

	ref := RuleRef{Name: name}

	if opts, ok := v.Get(keyOptions).Any().(map[string]any); ok && len(opts) > 0 {
		ref.Options = Options(opts)
	}

	return ref, nil
}

func decodeValidators(v Value) ([]ValidatorRef, error) {
	if v.IsNull() {
		return nil, nil
	}

	items, ok := v.AsList()
	if !ok {
		return nil, fmt.Errorf("%w: validators must be a list", ErrMalformedBlob)
	}

	var out []ValidatorRef

	for _, item := range items {
		rule, err := decodeRule(item)
		if err != nil {
			return nil, err
		}

		priority, ok := item.Get(keyPriority).AsInt()
		if !ok {
			priority = DefaultPriority
		}

		blocker, _ := item.Get(keyBlocker).AsBool()

		out = append(out, ValidatorRef{RuleRef: rule, Priority: int(priority), Blocker: blocker})
	}

	return out, nil
}

// ValidatorList converts validator references to a plain list usable as a rule
// option, e.g. the "links" of a chain.
func ValidatorList(refs []ValidatorRef) ([]any, error) {
	v, err := encodeValidators(refs)
	if err != nil {
		return nil, err
	}

	list, _ := v.Any().([]any)

	return list, nil
}

// ParseValidatorList is the inverse of ValidatorList.
func ParseValidatorList(option any) ([]ValidatorRef, error) {
	v, err := FromAny(option)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBlob, err)
	}

	return decodeValidators(v)
}

// ParseRule reads a nested rule option: either a bare rule name or a map
// with "name" and optional "options".
func ParseRule(option any) (RuleRef, error) {
	if name, ok := option.(string); ok {
		if name == "" {
			return RuleRef{}, fmt.Errorf("%w: rule without name", ErrMalformedBlob)
		}

		return RuleRef{Name: name}, nil
	}

	v, err := FromAny(option)
	if err != nil {
		return RuleRef{}, fmt.Errorf("%w: %w", ErrMalformedBlob, err)
	}

	return decodeRule(v)
}
