package cache

import (
	"fmt"

	domaincache "github.com/damianoneill/go-pipeline/pkg/domain/cache"
	domainconfig "github.com/damianoneill/go-pipeline/pkg/domain/config"
	"github.com/damianoneill/go-pipeline/pkg/domain/options"
)

var _ domaincache.Factory = (*Factory)(nil)

// Factory creates stores by kind.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) NewStore(opts ...domaincache.Option) (domaincache.Store, error) {
	o := domaincache.Options{Kind: domainconfig.FileStore}
	if err := options.Apply(&o, opts...); err != nil {
		return nil, fmt.Errorf("applying option: %w", err)
	}

	switch o.Kind {
	case domainconfig.MemoryStore:
		return NewMemoryStore(o.DefaultTTL), nil
	case domainconfig.FileStore:
		return NewFileStore(o.Path, o.DefaultTTL)
	case domainconfig.NullStore:
		return NewNullStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache store %q", o.Kind)
	}
}
