package source

import (
	"fmt"

	"record-mapper/internal/declare"
	"record-mapper/internal/diagnostic"
	"record-mapper/internal/metadata"
	"record-mapper/internal/naming"
)

// Build turns the declarations of one class into per-subset metadata.
// Errors are *metadata.MetadataError values naming the class, subset and field.
func Build(decl *declare.Declarations) (map[string]*metadata.ClassMetadata, *diagnostic.Diagnostics, error) {
	b := &builder{
		decl:    decl,
		result:  make(map[string]*metadata.ClassMetadata),
		diags:   &diagnostic.Diagnostics{},
		classID: decl.Class.String(),
	}

	for i := range decl.Properties {
		if err := b.property(&decl.Properties[i]); err != nil {
			return nil, b.diags, err
		}
	}

	b.classLevel()

	return b.result, b.diags, nil
}

type builder struct {
	decl    *declare.Declarations
	result  map[string]*metadata.ClassMetadata
	diags   *diagnostic.Diagnostics
	classID string
}

func (b *builder) subset(name string) *metadata.ClassMetadata {
	md, ok := b.result[name]
	if !ok {
		md = metadata.NewClassMetadata(b.decl.Class, name)
		b.result[name] = md
	}

	return md
}

func (b *builder) property(p *declare.Property) error {
	strategies := make(map[string]*metadata.RuleRef)

	for _, s := range p.Strategies {
		if _, seen := strategies[s.Subset]; seen {
			b.diags.AddWarning(diagnostic.CodeStrategyOverridden,
				fmt.Sprintf("strategy %q replaces an earlier declaration of property %s", s.Name, p.Name),
				diagnostic.Location{Class: b.classID, Subset: s.Subset, Field: p.Name})
		}

		strategies[s.Subset] = s.Ref()
	}

	validators := make(map[string][]metadata.ValidatorRef)
	for _, v := range p.Validators {
		validators[v.Subset] = append(validators[v.Subset], v.Ref())
	}

	for _, data := range p.Data {
		md := b.subset(data.Subset)

		field := data.Field
		if field == "" {
			field = p.Name
		}

		if md.HasField(field) {
			return metadata.NewError(b.decl.Class, data.Subset, field,
				fmt.Errorf("%w: property %s maps to a field name already in use", metadata.ErrDuplicateField, p.Name))
		}

		acc, err := b.accessors(p, data)
		if err != nil {
			return metadata.NewError(b.decl.Class, data.Subset, field, err)
		}

		md.Fields = append(md.Fields, field)
		md.Accessors[field] = acc
		md.Strategies[field] = strategies[data.Subset]
		md.Nullable[field] = data.Nullable

		if refs := validators[data.Subset]; len(refs) > 0 {
			md.Validators[field] = refs
		}
	}

	return nil
}

func (b *builder) accessors(p *declare.Property, data declare.DataDecl) (metadata.Accessors, error) {
	getter, err := b.accessor(p, data.Getter, naming.Getter(p.Name), 0, 0)
	if err != nil {
		return metadata.Accessors{}, fmt.Errorf("getter: %w", err)
	}

	setter, err := b.accessor(p, data.Setter, naming.Setter(p.Name), 1, 1)
	if err != nil {
		return metadata.Accessors{}, fmt.Errorf("setter: %w", err)
	}

	return metadata.Accessors{Getter: getter, Setter: setter}, nil
}

// accessor resolves one accessor binding. required is the number of mandatory
// parameters and optional the number of extra variadic ones allowed.
func (b *builder) accessor(p *declare.Property, override *string, synthesized string, required, optional int) (metadata.Accessor, error) {
	var name string

	switch {
	case override != nil && *override == "":
		return metadata.Accessor{Kind: metadata.AccessAbsent}, nil
	case override != nil:
		name = *override
	case p.Direct:
		return metadata.Direct(p.Name), nil
	default:
		name = synthesized
	}

	m, ok := b.decl.Methods[name]
	if !ok {
		return metadata.Accessor{}, fmt.Errorf("%w: %s", metadata.ErrMethodMissing, name)
	}

	if !m.Exported {
		return metadata.Accessor{}, fmt.Errorf("%w: %s", metadata.ErrMethodNotPublic, name)
	}

	mandatory := m.Params
	if m.Variadic {
		mandatory--
	}

	extra := m.Params - mandatory
	if mandatory != required || extra > optional {
		return metadata.Accessor{}, fmt.Errorf("%w: %s takes %d parameter(s), want %d required and at most %d optional",
			metadata.ErrMethodArity, name, m.Params, required, optional)
	}

	return metadata.Method(name), nil
}

func (b *builder) classLevel() {
	for _, v := range b.decl.ClassValidators {
		md, ok := b.result[v.Subset]
		if !ok {
			b.diags.AddWarning(diagnostic.CodeClassValidatorDropped,
				fmt.Sprintf("class validator %q dropped: subset has no fields", v.Name),
				diagnostic.Location{Class: b.classID, Subset: v.Subset})

			continue
		}

		md.Validators[metadata.ClassKey] = append(md.Validators[metadata.ClassKey], v.Ref())
	}

	for _, s := range b.decl.ClassStrategies {
		md, ok := b.result[s.Subset]
		if !ok {
			b.diags.AddWarning(diagnostic.CodeClassStrategyDropped,
				fmt.Sprintf("class strategy %q dropped: subset has no fields", s.Name),
				diagnostic.Location{Class: b.classID, Subset: s.Subset})

			continue
		}

		md.ClassStrategy = s.Ref()
	}
}
