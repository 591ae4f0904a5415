package declare

import (
	"errors"
	"fmt"
	"go/token"
	"os"

	"gopkg.in/yaml.v3"

	"record-mapper/internal/metadata"
)

// File is the root of a YAML declaration file.
//
//	version: "1"
//	classes:
//	  - class: example.com/app/model.User
//	    validators:                      # class-level
//	      - name: unique_email
//	    properties:
//	      - name: email
//	        data:
//	          - field: email
//	            nullable: true
//	          - subset: create
//	            setter: SetEmail
//	        validators:
//	          - {name: playground, options: {rule: email}, blocker: true}
//	    methods:
//	      - {name: SetEmail, params: 1}
type File struct {
	Version string      `yaml:"version,omitempty"`
	Classes []ClassFile `yaml:"classes"`
}

// ClassFile declares one class.
type ClassFile struct {
	Class      string          `yaml:"class"`
	Properties []PropertyFile  `yaml:"properties,omitempty"`
	Validators []ValidatorFile `yaml:"validators,omitempty"`
	Strategies []StrategyFile  `yaml:"strategies,omitempty"`
	Methods    []MethodFile    `yaml:"methods,omitempty"`
}

// PropertyFile declares one property.
type PropertyFile struct {
	Name string `yaml:"name"`
	// Direct defaults to true.
	Direct     *bool           `yaml:"direct,omitempty"`
	Data       []DataFile      `yaml:"data,omitempty"`
	Strategies []StrategyFile  `yaml:"strategies,omitempty"`
	Validators []ValidatorFile `yaml:"validators,omitempty"`
}

// DataFile is the YAML form of DataDecl.
type DataFile struct {
	Subset   string  `yaml:"subset,omitempty"`
	Field    string  `yaml:"field,omitempty"`
	Getter   *string `yaml:"getter,omitempty"`
	Setter   *string `yaml:"setter,omitempty"`
	Nullable bool    `yaml:"nullable,omitempty"`
}

// StrategyFile is the YAML form of StrategyDecl.
type StrategyFile struct {
	Subset  string         `yaml:"subset,omitempty"`
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options,omitempty"`
}

// ValidatorFile is the YAML form of ValidatorDecl.
type ValidatorFile struct {
	Subset   string         `yaml:"subset,omitempty"`
	Name     string         `yaml:"name"`
	Options  map[string]any `yaml:"options,omitempty"`
	Priority *int           `yaml:"priority,omitempty"`
	Blocker  bool           `yaml:"blocker,omitempty"`
}

// MethodFile is the YAML form of Method. Exported defaults to the Go export rule.
type MethodFile struct {
	Name     string `yaml:"name"`
	Exported *bool  `yaml:"exported,omitempty"`
	Params   int    `yaml:"params,omitempty"`
	Variadic bool   `yaml:"variadic,omitempty"`
}

// FileReader serves declarations loaded from a YAML file.
type FileReader struct {
	classes map[metadata.ClassID]*Declarations
}

// LoadFile loads and parses a YAML declaration file from the given path.
func LoadFile(path string) (*FileReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML declarations.
func Parse(data []byte) (*FileReader, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse declaration YAML: %w", err)
	}

	applyDefaults(&f)

	r := &FileReader{classes: make(map[metadata.ClassID]*Declarations, len(f.Classes))}

	var errs []error

	for i := range f.Classes {
		decl, err := f.Classes[i].declarations()
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if _, dup := r.classes[decl.Class]; dup {
			errs = append(errs, fmt.Errorf("class %s declared twice", decl.Class))
			continue
		}

		r.classes[decl.Class] = decl
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return r, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}

	for i := range f.Classes {
		c := &f.Classes[i]

		for j := range c.Properties {
			p := &c.Properties[j]
			if p.Direct == nil {
				direct := true
				p.Direct = &direct
			}

			defaultPriorities(p.Validators)
		}

		defaultPriorities(c.Validators)

		for j := range c.Methods {
			m := &c.Methods[j]
			if m.Exported == nil {
				exported := token.IsExported(m.Name)
				m.Exported = &exported
			}
		}
	}
}

func defaultPriorities(validators []ValidatorFile) {
	for i := range validators {
		if validators[i].Priority == nil {
			p := metadata.DefaultPriority
			validators[i].Priority = &p
		}
	}
}

// Read implements Reader.
func (r *FileReader) Read(class metadata.ClassID) (*Declarations, error) {
	decl, ok := r.classes[class]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}

	return decl, nil
}

// Classes returns the declared classes.
func (r *FileReader) Classes() []metadata.ClassID {
	out := make([]metadata.ClassID, 0, len(r.classes))
	for class := range r.classes {
		out = append(out, class)
	}

	return out
}

func (c *ClassFile) declarations() (*Declarations, error) {
	if c.Class == "" {
		return nil, errors.New("class entry without name")
	}

	decl := &Declarations{
		Class:   metadata.ParseClassID(c.Class),
		Methods: make(map[string]Method, len(c.Methods)),
	}

	for _, m := range c.Methods {
		decl.Methods[m.Name] = Method{Name: m.Name, Exported: *m.Exported, Params: m.Params, Variadic: m.Variadic}
	}

	var err error

	if decl.ClassValidators, err = validatorDecls(c.Validators); err != nil {
		return nil, fmt.Errorf("class %s: %w", c.Class, err)
	}

	if decl.ClassStrategies, err = strategyDecls(c.Strategies); err != nil {
		return nil, fmt.Errorf("class %s: %w", c.Class, err)
	}

	for _, p := range c.Properties {
		prop := Property{Name: p.Name, Direct: *p.Direct}

		for _, d := range p.Data {
			prop.Data = append(prop.Data, DataDecl(d))
		}

		if prop.Strategies, err = strategyDecls(p.Strategies); err != nil {
			return nil, fmt.Errorf("class %s property %s: %w", c.Class, p.Name, err)
		}

		if prop.Validators, err = validatorDecls(p.Validators); err != nil {
			return nil, fmt.Errorf("class %s property %s: %w", c.Class, p.Name, err)
		}

		decl.Properties = append(decl.Properties, prop)
	}

	return decl, nil
}

func strategyDecls(in []StrategyFile) ([]StrategyDecl, error) {
	out := make([]StrategyDecl, 0, len(in))

	for _, s := range in {
		opts, err := metadata.NormalizeOptions(s.Options)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", s.Name, err)
		}

		out = append(out, StrategyDecl{Subset: s.Subset, Name: s.Name, Options: opts})
	}

	return out, nil
}

func validatorDecls(in []ValidatorFile) ([]ValidatorDecl, error) {
	out := make([]ValidatorDecl, 0, len(in))

	for _, v := range in {
		opts, err := metadata.NormalizeOptions(v.Options)
		if err != nil {
			return nil, fmt.Errorf("validator %s: %w", v.Name, err)
		}

		out = append(out, ValidatorDecl{
			Subset:   v.Subset,
			Name:     v.Name,
			Options:  opts,
			Priority: *v.Priority,
			Blocker:  v.Blocker,
		})
	}

	return out, nil
}
