// Package catalog turns the flat product list into the per-saga carousel
// sections the storefront renders.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/MikeMC777/nolimits-storefront/internal/product"
)

// Section is one of the three carousels of a saga page.
type Section string

const (
	SectionPeliculas   Section = "peliculas"
	SectionVideojuegos Section = "videojuegos"
	SectionAccesorios  Section = "accesorios"
)

// SectionOrder is the page order, also used by search.
var SectionOrder = []Section{SectionPeliculas, SectionVideojuegos, SectionAccesorios}

// ClassifyCategory buckets a product type label. The second result is false
// for labels that belong to no section.
func ClassifyCategory(label string) (Section, bool) {
	l := Fold(label)
	switch {
	case strings.Contains(l, "pelic"):
		return SectionPeliculas, true
	case strings.Contains(l, "video"):
		return SectionVideojuegos, true
	case strings.Contains(l, "acces"):
		return SectionAccesorios, true
	}
	return "", false
}

// Ordering is a curated order of product names inside one section. Saga is
// the folded saga it applies to; empty means every saga.
type Ordering struct {
	Saga    string
	Section Section
	Names   []string
}

// DefaultOrderings ship with the storefront.
var DefaultOrderings = []Ordering{
	{
		Section: SectionVideojuegos,
		Names:   []string{"minecraft: java & bedrock", "minecraft: dungeons"},
	},
	{
		Saga:    "minecraft",
		Section: SectionAccesorios,
		Names: []string{
			"lámpara abeja minecraft",
			"audífonos gamer minecraft - edición mojang",
			"preservativo minecraft",
		},
	},
}

// Sections is the assembled saga page. Saga echoes the selection it was
// built for so a client can drop a late answer for a previous selection.
type Sections struct {
	Saga        string  `json:"saga"`
	Peliculas   []Slide `json:"peliculas"`
	Videojuegos []Slide `json:"videojuegos"`
	Accesorios  []Slide `json:"accesorios"`
}

// Section returns the slides of one section.
func (s Sections) Section(sec Section) []Slide {
	switch sec {
	case SectionPeliculas:
		return s.Peliculas
	case SectionVideojuegos:
		return s.Videojuegos
	case SectionAccesorios:
		return s.Accesorios
	}
	return nil
}

// Len is the total number of slides.
func (s Sections) Len() int {
	return len(s.Peliculas) + len(s.Videojuegos) + len(s.Accesorios)
}

// SearchHit locates a slide for the UI to scroll to.
type SearchHit struct {
	Section Section `json:"section"`
	Index   int     `json:"index"`
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
}

// Find returns the first slide whose name contains query, scanning the
// sections in page order. Matching ignores case and accents.
func (s Sections) Find(query string) (SearchHit, bool) {
	q := Fold(query)
	if q == "" {
		return SearchHit{}, false
	}
	for _, sec := range SectionOrder {
		for i, sl := range s.Section(sec) {
			if strings.Contains(Fold(sl.Name), q) {
				return SearchHit{Section: sec, Index: i, ID: sl.ID, Name: sl.Name}, true
			}
		}
	}
	return SearchHit{}, false
}

// Builder assembles sections. It is stateless apart from its configuration
// and safe for concurrent use.
type Builder struct {
	Images    *ImageResolver
	Orderings []Ordering
	Log       *zap.Logger

	mapSlide func(product.Product) Slide
}

func NewBuilder(images *ImageResolver, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{Images: images, Orderings: DefaultOrderings, Log: log}
}

// Build filters all by saga, splits by category, applies the curated orders
// and maps every product to a slide. An empty selection yields empty
// sections. all is not modified.
func (b *Builder) Build(all []product.Product, saga string) Sections {
	out := Sections{
		Saga:        saga,
		Peliculas:   []Slide{},
		Videojuegos: []Slide{},
		Accesorios:  []Slide{},
	}
	selected := strings.ToLower(strings.TrimSpace(saga))
	if selected == "" {
		return out
	}

	buckets := map[Section][]product.Product{}
	for _, p := range all {
		if !strings.Contains(strings.ToLower(strings.TrimSpace(p.SagaLabel())), selected) {
			continue
		}
		sec, ok := ClassifyCategory(p.CategoryLabel())
		if !ok {
			b.Log.Debug("product without section",
				zap.Int64("id", p.ID), zap.String("tipo", p.CategoryLabel()))
			continue
		}
		buckets[sec] = append(buckets[sec], p)
	}

	for _, o := range b.Orderings {
		if o.Saga != "" && Fold(o.Saga) != Fold(saga) {
			continue
		}
		applyOrdering(buckets[o.Section], o.Names)
	}

	out.Peliculas = b.slides(buckets[SectionPeliculas])
	out.Videojuegos = b.slides(buckets[SectionVideojuegos])
	out.Accesorios = b.slides(buckets[SectionAccesorios])
	return out
}

// applyOrdering puts listed names first, in list order, and keeps the
// relative order of everything else.
func applyOrdering(items []product.Product, names []string) {
	if len(items) < 2 || len(names) == 0 {
		return
	}
	rank := make(map[string]int, len(names))
	for i, n := range names {
		rank[Fold(n)] = i
	}
	pos := func(p product.Product) int {
		if r, ok := rank[Fold(p.Nombre)]; ok {
			return r
		}
		return len(names)
	}
	sort.SliceStable(items, func(i, j int) bool { return pos(items[i]) < pos(items[j]) })
}

func (b *Builder) slides(items []product.Product) []Slide {
	out := make([]Slide, 0, len(items))
	for _, p := range items {
		out = append(out, b.slide(p))
	}
	return out
}

// slide maps one product; a failure yields a default slide instead of
// aborting the page.
func (b *Builder) slide(p product.Product) (s Slide) {
	defer func() {
		if r := recover(); r != nil {
			b.Log.Error("slide mapping failed",
				zap.Int64("id", p.ID), zap.String("panic", fmt.Sprint(r)))
			s = b.Images.fallbackSlide(p)
		}
	}()
	if b.mapSlide != nil {
		return b.mapSlide(p)
	}
	return b.Images.NewSlide(p)
}
