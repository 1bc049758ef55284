// Package favorites keeps the per-session list of saved products. Each entry
// is a snapshot of the slide at the time it was saved, newest first.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MikeMC777/nolimits-storefront/internal/catalog"
	"github.com/MikeMC777/nolimits-storefront/internal/storage"
)

// Favorites is not safe for concurrent use; callers serialize per session.
type Favorites struct {
	store storage.KV
	log   *zap.Logger
	items []catalog.Slide
}

// Load hydrates the list from store; missing or corrupt data yields an empty
// list. Duplicate ids keep their first (newest) entry.
func Load(ctx context.Context, store storage.KV, log *zap.Logger) *Favorites {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Favorites{store: store, log: log, items: []catalog.Slide{}}
	raw, err := store.Load(ctx, storage.KeyFavorites)
	if errors.Is(err, storage.ErrNotFound) {
		return f
	}
	if err != nil {
		log.Warn("favorites: load failed, starting empty", zap.Error(err))
		return f
	}
	var items []catalog.Slide
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn("favorites: corrupt data, starting empty", zap.Error(err))
		return f
	}
	seen := map[int64]bool{}
	for _, s := range items {
		if s.ID == 0 || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		f.items = append(f.items, s)
	}
	return f
}

// Items returns copies of the saved slides, newest first.
func (f *Favorites) Items() []catalog.Slide {
	out := make([]catalog.Slide, 0, len(f.items))
	for _, s := range f.items {
		out = append(out, s.Clone())
	}
	return out
}

func (f *Favorites) Get(id int64) (catalog.Slide, bool) {
	if i := f.find(id); i >= 0 {
		return f.items[i].Clone(), true
	}
	return catalog.Slide{}, false
}

func (f *Favorites) IsFavorite(id int64) bool { return f.find(id) >= 0 }

func (f *Favorites) Len() int { return len(f.items) }

func (f *Favorites) find(id int64) int {
	for i, s := range f.items {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Toggle saves a copy of slide, or removes it if already saved. It reports
// whether the slide is a favorite afterwards. A slide without id is ignored.
func (f *Favorites) Toggle(ctx context.Context, slide catalog.Slide) (bool, error) {
	if slide.ID == 0 {
		return false, nil
	}
	if i := f.find(slide.ID); i >= 0 {
		f.items = append(f.items[:i], f.items[i+1:]...)
		return false, f.persist(ctx)
	}
	f.items = append([]catalog.Slide{slide.Clone()}, f.items...)
	return true, f.persist(ctx)
}

// Remove drops id from the list. Removing an absent id is not an error.
func (f *Favorites) Remove(ctx context.Context, id int64) error {
	i := f.find(id)
	if i < 0 {
		return nil
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return f.persist(ctx)
}

func (f *Favorites) Clear(ctx context.Context) error {
	f.items = []catalog.Slide{}
	return f.persist(ctx)
}

func (f *Favorites) persist(ctx context.Context) error {
	b, err := json.Marshal(f.items)
	if err != nil {
		return err
	}
	if err := f.store.Save(ctx, storage.KeyFavorites, b); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}
