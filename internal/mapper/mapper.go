package mapper

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"record-mapper/internal/factory"
	"record-mapper/internal/metadata"
	"record-mapper/internal/validate"
)

// ErrNotAnObject is returned when a value is not a pointer to a struct.
var ErrNotAnObject = errors.New("expecting a non-nil pointer to a struct")

// Service is the entry point for hydrating, extracting and validating.
// It is safe for concurrent use.
type Service struct {
	builder *factory.Builder
	logger  *zap.Logger
}

// New returns a service wiring rules with builder.
func New(builder *factory.Builder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{builder: builder, logger: logger.Named("mapper")}
}

// Validate checks a record against the rules of a class subset.
// The error is a configuration error; violations are in the report.
func (s *Service) Validate(data any, class metadata.ClassID, subset string) (validate.Report, error) {
	v, err := s.builder.Validator(class, subset)
	if err != nil {
		return nil, err
	}

	report := v.Validate(data)
	if !report.Valid() {
		s.logger.Debug("record rejected",
			zap.Stringer("class", class), zap.String("subset", subset), zap.Int("violations", len(report.Flatten())))
	}

	return report, nil
}

// Hydrate validates data and, when it is valid, writes it into obj, a
// pointer to a struct.
func (s *Service) Hydrate(data, obj any, subset string) (validate.Report, error) {
	rv := reflect.ValueOf(obj)
	if !isObject(rv) {
		return nil, fmt.Errorf("%w, got %T", ErrNotAnObject, obj)
	}

	class := metadata.ClassOf(rv.Type())

	report, err := s.Validate(data, class, subset)
	if err != nil || !report.Valid() {
		return report, err
	}

	st, err := s.builder.Strategy(class, subset)
	if err != nil {
		return nil, err
	}

	out, err := st.Hydrate(data, obj)
	if err != nil {
		return nil, fmt.Errorf("hydrate %s: %w", class, err)
	}

	// A whole-object strategy may return another instance, e.g. one loaded by identifier.
	if o := reflect.ValueOf(out); o.IsValid() && o.Type() == rv.Type() && o.Pointer() != rv.Pointer() {
		if o.IsNil() {
			return nil, fmt.Errorf("hydrate %s: %w", class, ErrNotAnObject)
		}

		rv.Elem().Set(o.Elem())
	}

	return nil, nil
}

// Extract turns obj, a struct or a pointer to one, into a record.
func (s *Service) Extract(obj any, subset string) (any, error) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() == reflect.Struct {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		rv = p
	}

	if !isObject(rv) {
		return nil, fmt.Errorf("%w, got %T", ErrNotAnObject, obj)
	}

	class := metadata.ClassOf(rv.Type())

	st, err := s.builder.Strategy(class, subset)
	if err != nil {
		return nil, err
	}

	out, err := st.Extract(rv.Interface())
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", class, err)
	}

	return out, nil
}

func isObject(rv reflect.Value) bool {
	return rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct
}
