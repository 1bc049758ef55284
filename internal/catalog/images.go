package catalog

import (
	"net/url"
	"strings"

	"github.com/MikeMC777/nolimits-storefront/internal/product"
)

// LogoAsset is shown when nothing better is known about a product.
const LogoAsset = "logos/NoLimits.webp"

// DefaultProductAssets maps product names to bundled images.
var DefaultProductAssets = map[string]string{
	"spiderman 1": "peliculas/spiderman/PSpiderman1.webp",
	"spiderman 2": "peliculas/spiderman/PSpiderman2.webp",
	"spiderman 3": "peliculas/spiderman/PSpiderman3.webp",

	"marvel's spider-man remastered": "videojuegos/spiderman/VGSpiderman1.webp",
	"spider-man: miles morales":      "videojuegos/spiderman/VGSpidermanMM.webp",
	"marvel's spider-man 2":          "videojuegos/spiderman/VGSpiderman2.webp",

	"máscara de spider-man – edición de colección":                          "accesorios/spiderman/ACCSpiderman1.webp",
	"control dualsense ps5 – edición spider-man (diseño venom / simbionte)": "accesorios/spiderman/ACCSpiderman2.webp",
	"audífonos gamer spider-man – edición marvel":                           "accesorios/spiderman/ACCSpiderman3.webp",

	"una película de minecraft": "peliculas/minecraft/PMinecraft.webp",

	"minecraft: java & bedrock": "videojuegos/minecraft/VGMinecraftJyB.webp",
	"minecraft: dungeons":       "videojuegos/minecraft/VGMinecraftDungeons.webp",

	"lámpara abeja minecraft":                    "accesorios/minecraft/ACCMinecraft1.webp",
	"audífonos gamer minecraft - edición mojang": "accesorios/minecraft/ACCMinecraft2.webp",
	"preservativo minecraft":                     "accesorios/minecraft/ACCMinecraft3.webp",
}

// DefaultSagaAssets maps saga keys (see sagaKey) to bundled covers.
var DefaultSagaAssets = map[string]string{
	"spiderman": "sagas/SagaSpiderman.webp",
}

// ImageResolver turns product and saga data into absolute image URLs under
// BaseURL.
type ImageResolver struct {
	BaseURL  string
	products map[string]string
	sagas    map[string]string
}

// NewImageResolver builds a resolver over the bundled assets. Product names
// are matched folded, so accents and case do not matter.
func NewImageResolver(baseURL string) *ImageResolver {
	r := &ImageResolver{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		products: make(map[string]string, len(DefaultProductAssets)),
		sagas:    DefaultSagaAssets,
	}
	for name, path := range DefaultProductAssets {
		r.products[Fold(name)] = path
	}
	return r
}

// Asset joins a bundled or backend relative path to the base URL.
func (r *ImageResolver) Asset(rel string) string {
	rel = strings.TrimSpace(strings.ReplaceAll(rel, "\\", "/"))
	rel = strings.TrimLeft(rel, "./")
	for _, prefix := range []string{"src/assets/img/", "assets/img/"} {
		if len(rel) >= len(prefix) && strings.EqualFold(rel[:len(prefix)], prefix) {
			rel = rel[len(prefix):]
			break
		}
	}
	return r.BaseURL + "/" + rel
}

// ProductImage picks, in order: the first absolute http(s) image from the
// backend, the bundled image for the product name, the first relative backend
// path, and finally the logo.
func (r *ImageResolver) ProductImage(p product.Product) string {
	for _, src := range p.Imagenes {
		if isAbsoluteURL(src) {
			return strings.TrimSpace(src)
		}
	}
	if path, ok := r.products[Fold(p.Nombre)]; ok {
		return r.Asset(path)
	}
	for _, src := range p.Imagenes {
		if s := strings.TrimSpace(src); s != "" && !strings.Contains(s, "://") {
			return r.Asset(s)
		}
	}
	return r.Asset(LogoAsset)
}

// SagaCover resolves a saga cover: the backend cover (absolute or relative),
// then the bundled cover for the saga. Nil when neither exists.
func (r *ImageResolver) SagaCover(s product.SagaSummary) *string {
	var out string
	switch {
	case s.PortadaSaga != nil && isAbsoluteURL(*s.PortadaSaga):
		out = strings.TrimSpace(*s.PortadaSaga)
	case s.PortadaSaga != nil && strings.TrimSpace(*s.PortadaSaga) != "":
		out = r.Asset(*s.PortadaSaga)
	default:
		path, ok := r.sagas[sagaKey(s.Nombre)]
		if !ok {
			return nil
		}
		out = r.Asset(path)
	}
	return &out
}

// FavoriteImage re-resolves the image of a saved favorite. A stored logo is
// ignored so a product that gained a real image since shows it.
func (r *ImageResolver) FavoriteImage(s Slide) string {
	if src := strings.TrimSpace(s.Src); src != "" && !strings.HasSuffix(strings.ToLower(src), strings.ToLower(LogoAsset)) {
		return src
	}
	return r.ProductImage(product.Product{Nombre: s.Name, Imagenes: s.Imagenes})
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
