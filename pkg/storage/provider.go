package storage

import (
	"path/filepath"

	"github.com/ManouchehrRasoulli/localstore/pkg/logger"
)

type Option func(p *Provider)

func WithBasePath(path string) Option {
	return func(p *Provider) {
		if path != "" {
			p.basePath = path
		}
	}
}

func WithLogger(lg *logger.ColorLogger) Option {
	return func(p *Provider) {
		if lg != nil {
			p.logger = lg
		}
	}
}

func WithBufferSize(size int32) Option {
	return func(p *Provider) {
		p.bufferSize = size
	}
}

// Provider
// hands out storage item handles under one resolved base directory. all of
// them share the provider registry, and so one change watcher.
type Provider struct {
	basePath   string
	logger     *logger.ColorLogger
	bufferSize int32
	registry   *Registry
}

func NewProvider(mapper PathMapper, options ...Option) (*Provider, error) {
	if mapper == nil {
		return nil, ErrNoMapper
	}

	p := Provider{
		basePath: BasePath,
		logger:   logger.Discard(),
	}

	for _, op := range options {
		op(&p)
	}

	base, err := filepath.Abs(mapper.MapPath(p.basePath))
	if err != nil {
		return nil, err
	}

	p.registry = NewRegistry(base, p.logger, p.bufferSize)
	p.logger.Infof("provider :: storage items of %s resolved under %s", p.basePath, base)

	return &p, nil
}

// Item handle bound to the backing file of obj.
func (p *Provider) Item(obj Storable) *Handle {
	return NewHandle(p.registry, obj)
}

func (p *Provider) Base() string {
	return p.registry.Base()
}

func (p *Provider) Registry() *Registry {
	return p.registry
}

// Close stops the shared change watcher, handles stay usable for I/O.
func (p *Provider) Close() error {
	return p.registry.Close()
}
