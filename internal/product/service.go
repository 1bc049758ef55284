package product

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service is the read path the storefront uses: the full product list goes
// through the cache, everything else straight to the repository. Writes
// always drop the cache.
type Service struct {
	repo  Repository
	cache *Cache
	log   *zap.Logger
	group singleflight.Group
}

func NewService(repo Repository, cache *Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, log: log}
}

// ListProducts returns the cached list unless force is set or the TTL has
// passed. Concurrent misses of the same cache generation share one backend
// call; a fetch that straddles a write is returned to its callers but never
// cached. The returned slice is shared and must not be modified.
func (s *Service) ListProducts(ctx context.Context, force bool) ([]Product, error) {
	if !force {
		if items, ok := s.cache.Get(); ok {
			return items, nil
		}
	}
	gen := s.cache.Generation()
	key := "productos:" + strconv.FormatUint(gen, 10)
	v, err, shared := s.group.Do(key, func() (any, error) {
		items, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if !s.cache.Put(items, gen) {
			s.log.Debug("product list outdated by a write, not cached")
		}
		return items, nil
	})
	if err != nil {
		s.log.Warn("product list fetch failed", zap.Error(err))
		return nil, err
	}
	if shared {
		s.log.Debug("product list fetch shared")
	}
	return v.([]Product), nil
}

// ProductsBySaga returns the products whose saga equals name, ignoring case
// and surrounding blanks.
func (s *Service) ProductsBySaga(ctx context.Context, name string) ([]Product, error) {
	all, err := s.ListProducts(ctx, false)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(strings.TrimSpace(name))
	out := []Product{}
	if want == "" {
		return out, nil
	}
	for _, p := range all {
		if strings.ToLower(strings.TrimSpace(p.SagaLabel())) == want {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Page(ctx context.Context, page, size int) (Page, error) {
	return s.repo.Page(ctx, page, size)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Sagas(ctx context.Context) ([]SagaSummary, error) {
	return s.repo.Sagas(ctx)
}

func (s *Service) Lookup(ctx context.Context, kind LookupKind) ([]LookupItem, error) {
	return s.repo.Lookup(ctx, kind)
}

// Create, Update and Delete invalidate the cache after the attempt, whatever
// its outcome.

func (s *Service) Create(ctx context.Context, in ProductInput) (*Product, error) {
	defer s.cache.Invalidate()
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	defer s.cache.Invalidate()
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	defer s.cache.Invalidate()
	return s.repo.Delete(ctx, id)
}
