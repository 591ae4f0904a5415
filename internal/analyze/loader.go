package analyze

import (
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"slices"
	"strings"
	"sync"

	"golang.org/x/tools/go/packages"

	"record-mapper/internal/declare"
	"record-mapper/internal/metadata"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and keeps the declarations of their struct types.
// It is safe for concurrent use.
type Analyzer struct {
	dir string

	mu    sync.RWMutex
	decls map[metadata.ClassID]*declare.Declarations
}

// NewAnalyzer creates an Analyzer resolving patterns relative to dir.
// An empty dir means the current directory.
func NewAnalyzer(dir string) *Analyzer {
	return &Analyzer{
		dir:   dir,
		decls: make(map[metadata.ClassID]*declare.Declarations),
	}
}

// LoadPackages loads the specified packages and returns the classes found.
// Patterns are standard Go package patterns (e.g., "./model", "example.com/app/...").
func (a *Analyzer) LoadPackages(patterns ...string) ([]metadata.ClassID, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	found := make(map[metadata.ClassID]*declare.Declarations)

	for _, pkg := range pkgs {
		if err := processPackage(pkg, found); err != nil {
			return nil, fmt.Errorf("failed to process package %s: %w", pkg.PkgPath, err)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	classes := make([]metadata.ClassID, 0, len(found))
	for class, decl := range found {
		a.decls[class] = decl
		classes = append(classes, class)
	}

	sortClasses(classes)

	return classes, nil
}

// Read implements declare.Reader.
func (a *Analyzer) Read(class metadata.ClassID) (*declare.Declarations, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	decl, ok := a.decls[class]
	if !ok {
		return nil, fmt.Errorf("%w: %s", declare.ErrUnknownClass, class)
	}

	return decl, nil
}

// Classes returns every loaded class, sorted by qualified name.
func (a *Analyzer) Classes() []metadata.ClassID {
	a.mu.RLock()
	defer a.mu.RUnlock()

	classes := make([]metadata.ClassID, 0, len(a.decls))
	for class := range a.decls {
		classes = append(classes, class)
	}

	sortClasses(classes)

	return classes
}

// processPackage extracts the declarations of every named struct type.
func processPackage(pkg *packages.Package, found map[metadata.ClassID]*declare.Declarations) error {
	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || typeName.IsAlias() {
			continue
		}

		named, ok := typeName.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}

		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			continue
		}

		class := metadata.ClassID{PkgPath: pkg.PkgPath, Name: name}

		decl, err := declarations(class, named, st)
		if err != nil {
			return err
		}

		found[class] = decl
	}

	return nil
}

// declarations reads the tags of a struct in field order. A field named "_"
// carries class-level declarations.
func declarations(class metadata.ClassID, named *types.Named, st *types.Struct) (*declare.Declarations, error) {
	decl := &declare.Declarations{
		Class:   class,
		Methods: methodSet(named),
	}

	for i := range st.NumFields() {
		field := st.Field(i)

		tags, err := declare.ParseTag(reflect.StructTag(st.Tag(i)))
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", class, field.Name(), err)
		}

		if field.Name() == "_" {
			decl.ClassValidators = append(decl.ClassValidators, tags.Validators...)
			decl.ClassStrategies = append(decl.ClassStrategies, tags.Strategies...)

			continue
		}

		decl.Properties = append(decl.Properties, declare.Property{
			Name:       field.Name(),
			Direct:     field.Exported(),
			Data:       tags.Data,
			Strategies: tags.Strategies,
			Validators: tags.Validators,
		})
	}

	return decl, nil
}

// methodSet returns the methods callable on a pointer to named, exported or not.
func methodSet(named *types.Named) map[string]declare.Method {
	mset := types.NewMethodSet(types.NewPointer(named))
	methods := make(map[string]declare.Method, mset.Len())

	for i := range mset.Len() {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}

		sig := fn.Type().(*types.Signature)
		methods[fn.Name()] = declare.Method{
			Name:     fn.Name(),
			Exported: fn.Exported(),
			Params:   sig.Params().Len(),
			Variadic: sig.Variadic(),
		}
	}

	return methods
}

func sortClasses(classes []metadata.ClassID) {
	slices.SortFunc(classes, func(x, y metadata.ClassID) int {
		return strings.Compare(x.String(), y.String())
	})
}
