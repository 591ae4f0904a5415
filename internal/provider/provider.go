package provider

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"record-mapper/internal/declare"
	"record-mapper/internal/metadata"
	"record-mapper/internal/source"
)

// Rule names the provider refers to when a class declares no whole-object rule.
const (
	RuleWhatever = "whatever"
	RuleChain    = "chain"

	// OptionLinks is the chain option listing the validators to run.
	OptionLinks = "links"
)

// ErrFieldNotFound is returned when a field is not part of a subset.
var ErrFieldNotFound = errors.New("field not found")

// Cache persists per-class metadata blobs.
type Cache interface {
	Get(class metadata.ClassID) (metadata.Value, bool)
	Set(class metadata.ClassID, blob any) bool
}

// FieldAccess is the name and accessor bindings of one field.
type FieldAccess struct {
	Name   string
	Getter metadata.Accessor
	Setter metadata.Accessor
}

// Provider serves class and field metadata. It is safe for concurrent use.
type Provider struct {
	reader declare.Reader
	cache  Cache
	logger *zap.Logger

	memo  sync.Map // metadata.ClassID -> map[string]*metadata.ClassMetadata
	group singleflight.Group
}

// New returns a provider reading declarations from reader. cache may be nil.
func New(reader declare.Reader, cache Cache, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		reader: reader,
		cache:  cache,
		logger: logger.Named("provider"),
	}
}

// Subsets returns the metadata of every subset of a class.
func (p *Provider) Subsets(class metadata.ClassID) (map[string]*metadata.ClassMetadata, error) {
	if v, ok := p.memo.Load(class); ok {
		return v.(map[string]*metadata.ClassMetadata), nil
	}

	v, err, _ := p.group.Do(class.String(), func() (any, error) {
		if v, ok := p.memo.Load(class); ok {
			return v, nil
		}

		subsets, err := p.load(class)
		if err != nil {
			return nil, err
		}

		p.memo.Store(class, subsets)

		return subsets, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(map[string]*metadata.ClassMetadata), nil
}

func (p *Provider) load(class metadata.ClassID) (map[string]*metadata.ClassMetadata, error) {
	log := p.logger.With(zap.Stringer("class", class))

	if p.cache != nil {
		if blob, ok := p.cache.Get(class); ok {
			subsets, err := metadata.Decode(blob)
			if err == nil {
				log.Debug("metadata cache hit")

				return subsets, nil
			}

			log.Warn("ignoring unreadable cached metadata", zap.Error(err))
		}
	}

	decl, err := p.reader.Read(class)
	if err != nil {
		return nil, fmt.Errorf("read declarations of %s: %w", class, err)
	}

	subsets, diags, err := source.Build(decl)
	if err != nil {
		return nil, err
	}

	for _, d := range diags.All() {
		log.Warn(d.Message, zap.String("code", d.Code), zap.String("subset", d.Subset), zap.String("field", d.Field))
	}

	if p.cache != nil {
		blob, err := metadata.Encode(subsets)
		if err != nil {
			log.Warn("metadata not cacheable", zap.Error(err))
		} else if !p.cache.Set(class, blob) {
			log.Debug("metadata not cached")
		}
	}

	return subsets, nil
}

// Metadata returns the metadata of one subset of a class.
func (p *Provider) Metadata(class metadata.ClassID, subset string) (*metadata.ClassMetadata, error) {
	subsets, err := p.Subsets(class)
	if err != nil {
		return nil, err
	}

	md, ok := subsets[subset]
	if !ok {
		return nil, metadata.NewError(class, subset, "", metadata.ErrSubsetNotFound)
	}

	return md, nil
}

// ClassFields yields the fields of a subset in declaration order.
func (p *Provider) ClassFields(class metadata.ClassID, subset string) (iter.Seq[FieldAccess], error) {
	md, err := p.Metadata(class, subset)
	if err != nil {
		return nil, err
	}

	return func(yield func(FieldAccess) bool) {
		for _, name := range md.Fields {
			acc := md.Accessors[name]
			if !yield(FieldAccess{Name: name, Getter: acc.Getter, Setter: acc.Setter}) {
				return
			}
		}
	}, nil
}

// ClassStrategy returns the whole-object strategy of a subset, "whatever"
// when none is declared.
func (p *Provider) ClassStrategy(class metadata.ClassID, subset string) (metadata.RuleRef, error) {
	md, err := p.Metadata(class, subset)
	if err != nil {
		return metadata.RuleRef{}, err
	}

	if md.ClassStrategy == nil {
		return metadata.RuleRef{Name: RuleWhatever}, nil
	}

	return *md.ClassStrategy, nil
}

// ClassValidator returns the whole-object validator of a subset: a chain of
// the declared class validators, or "whatever" when there are none.
func (p *Provider) ClassValidator(class metadata.ClassID, subset string) (metadata.RuleRef, error) {
	md, err := p.Metadata(class, subset)
	if err != nil {
		return metadata.RuleRef{}, err
	}

	refs := md.ClassValidators()
	if len(refs) == 0 {
		return metadata.RuleRef{Name: RuleWhatever}, nil
	}

	links, err := metadata.ValidatorList(refs)
	if err != nil {
		return metadata.RuleRef{}, metadata.NewError(class, subset, "", err)
	}

	return metadata.RuleRef{Name: RuleChain, Options: metadata.Options{OptionLinks: links}}, nil
}

func (p *Provider) field(class metadata.ClassID, subset, field string) (*metadata.ClassMetadata, error) {
	md, err := p.Metadata(class, subset)
	if err != nil {
		return nil, err
	}

	if !md.HasField(field) {
		return nil, metadata.NewError(class, subset, field, ErrFieldNotFound)
	}

	return md, nil
}

// FieldStrategy returns the strategy reference of a field, nil when none is declared.
func (p *Provider) FieldStrategy(class metadata.ClassID, subset, field string) (*metadata.RuleRef, error) {
	md, err := p.field(class, subset, field)
	if err != nil {
		return nil, err
	}

	return md.Strategies[field], nil
}

// FieldValidators returns the validator references of a field in declaration order.
func (p *Provider) FieldValidators(class metadata.ClassID, subset, field string) ([]metadata.ValidatorRef, error) {
	md, err := p.field(class, subset, field)
	if err != nil {
		return nil, err
	}

	return md.Validators[field], nil
}

// FieldNullable reports whether a field accepts nil.
func (p *Provider) FieldNullable(class metadata.ClassID, subset, field string) (bool, error) {
	md, err := p.field(class, subset, field)
	if err != nil {
		return false, err
	}

	return md.Nullable[field], nil
}
