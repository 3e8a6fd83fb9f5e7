package cache

import (
	"context"
	"time"

	"github.com/karlseguin/ccache/v3"

	domainproperty "rentbook/internal/domain/property"
)

const defaultMaxSize = 10_000

// PropertyDirectory keeps recently resolved properties in process memory.
// Misses are not cached, so a property created after a NotFound becomes
// visible on the next lookup.
type PropertyDirectory struct {
	next  domainproperty.Directory
	cache *ccache.Cache[*domainproperty.Property]
	ttl   time.Duration
}

func NewPropertyDirectory(next domainproperty.Directory, ttl time.Duration, maxSize int64) *PropertyDirectory {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PropertyDirectory{
		next:  next,
		cache: ccache.New(ccache.Configure[*domainproperty.Property]().MaxSize(maxSize)),
		ttl:   ttl,
	}
}

func (d *PropertyDirectory) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	if item := d.cache.Get(string(id)); item != nil && !item.Expired() {
		return item.Value().Clone(), nil
	}
	p, err := d.next.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.cache.Set(string(id), p.Clone(), d.ttl)
	return p, nil
}

// Invalidate drops a cached property after the listing side changed it.
func (d *PropertyDirectory) Invalidate(id domainproperty.ID) {
	d.cache.Delete(string(id))
}

// Stop releases the cache's background worker.
func (d *PropertyDirectory) Stop() {
	d.cache.Stop()
}

var _ domainproperty.Directory = (*PropertyDirectory)(nil)
