package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/nolimits-storefront/internal/money"
	"github.com/MikeMC777/nolimits-storefront/internal/product"
)

// Slide is the display model of one product in a carousel.
type Slide struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	PriceLabel      string          `json:"priceLabel"`
	Desc            string          `json:"desc"`
	Src             string          `json:"src"`
	Alt             string          `json:"alt"`
	Tipo            string          `json:"tipo"`
	Clasificacion   string          `json:"clasificacion"`
	Estado          string          `json:"estado"`
	Saga            string          `json:"saga"`
	Imagenes        []string        `json:"imagenes"`
	Plataformas     []string        `json:"plataformas"`
	Generos         []string        `json:"generos"`
	Empresas        []string        `json:"empresas"`
	Desarrolladores []string        `json:"desarrolladores"`
	PlatformURLs    PlatformLinks   `json:"platformUrlMap"`
	URLCompra       string          `json:"urlCompra,omitempty"`
}

// Clone returns a copy sharing no slices or maps with s.
func (s Slide) Clone() Slide {
	out := s
	out.Imagenes = cloneStrings(s.Imagenes)
	out.Plataformas = cloneStrings(s.Plataformas)
	out.Generos = cloneStrings(s.Generos)
	out.Empresas = cloneStrings(s.Empresas)
	out.Desarrolladores = cloneStrings(s.Desarrolladores)
	out.PlatformURLs = make(PlatformLinks, len(s.PlatformURLs))
	for k, v := range s.PlatformURLs {
		out.PlatformURLs[k] = v
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// NewSlide maps a backend product to its slide.
func (r *ImageResolver) NewSlide(p product.Product) Slide {
	desc := p.Descripcion
	if desc == "" {
		desc = p.Nombre
	}
	return Slide{
		ID:              p.ID,
		Name:            p.Nombre,
		Price:           p.Precio,
		PriceLabel:      money.FormatCLP(p.Precio),
		Desc:            desc,
		Src:             r.ProductImage(p),
		Alt:             p.Nombre,
		Tipo:            p.CategoryLabel(),
		Clasificacion:   p.ClasificacionNombre,
		Estado:          p.EstadoNombre,
		Saga:            p.SagaLabel(),
		Imagenes:        cloneStrings(p.Imagenes),
		Plataformas:     cloneStrings(p.Plataformas),
		Generos:         cloneStrings(p.Generos),
		Empresas:        cloneStrings(p.Empresas),
		Desarrolladores: cloneStrings(p.Desarrolladores),
		PlatformURLs:    buildPlatformLinks(p.Plataformas, p.PlatformPositions(), p.LinksCompra),
		URLCompra:       firstLink(p.LinksCompra),
	}
}

// fallbackSlide is shown in place of a product whose mapping failed.
func (r *ImageResolver) fallbackSlide(p product.Product) Slide {
	return Slide{
		ID:              p.ID,
		Name:            p.Nombre,
		Price:           p.Precio,
		PriceLabel:      money.FormatCLP(p.Precio),
		Desc:            p.Nombre,
		Src:             r.Asset(LogoAsset),
		Alt:             p.Nombre,
		Imagenes:        []string{},
		Plataformas:     []string{},
		Generos:         []string{},
		Empresas:        []string{},
		Desarrolladores: []string{},
		PlatformURLs:    PlatformLinks{},
	}
}
