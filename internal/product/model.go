package product

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a catalog record as the NoLimits backend returns it. The client
// never mutates one; views are derived from it.
type Product struct {
	ID                  int64           `json:"id"`
	Nombre              string          `json:"nombre"`
	Precio              decimal.Decimal `json:"precio"`
	Descripcion         string          `json:"descripcion,omitempty"`
	TipoProductoNombre  string          `json:"tipoProductoNombre,omitempty"`
	TipoProducto        string          `json:"tipoProducto,omitempty"`
	Tipo                string          `json:"tipo,omitempty"`
	ClasificacionNombre string          `json:"clasificacionNombre,omitempty"`
	EstadoNombre        string          `json:"estadoNombre,omitempty"`
	Saga                string          `json:"saga,omitempty"`
	SagaNombre          string          `json:"sagaNombre,omitempty"`
	Imagenes            []string        `json:"imagenes"`
	Plataformas         []string        `json:"plataformas"`
	Generos             []string        `json:"generos"`
	Empresas            []string        `json:"empresas"`
	Desarrolladores     []string        `json:"desarrolladores"`
	LinksCompra         []PurchaseLink  `json:"linksCompra"`

	// platformPos[i] is where Plataformas[i] sat in the backend array, which
	// is also where its linksCompra entry sits.
	platformPos []int
}

type PurchaseLink struct {
	URL string `json:"url" validate:"omitempty,url"`
}

// CategoryLabel is the product type label, whichever field the backend filled.
func (p Product) CategoryLabel() string {
	for _, v := range []string{p.TipoProductoNombre, p.TipoProducto, p.Tipo} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// PlatformPositions returns, for each entry of Plataformas, its index in the
// backend array. Products not decoded from the backend use their own order.
func (p Product) PlatformPositions() []int {
	if len(p.platformPos) == len(p.Plataformas) {
		return p.platformPos
	}
	out := make([]int, len(p.Plataformas))
	for i := range out {
		out[i] = i
	}
	return out
}

// SagaLabel returns sagaNombre or saga.
func (p Product) SagaLabel() string {
	if strings.TrimSpace(p.SagaNombre) != "" {
		return p.SagaNombre
	}
	return p.Saga
}

// UnmarshalJSON decodes field by field so one badly typed attribute (a string
// price, a set of objects instead of names, a null) degrades to a default
// instead of rejecting the whole record.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	plats, pos := looseNamesAt(raw["plataformas"], "nombre")
	*p = Product{
		ID:                  looseInt(raw["id"]),
		Nombre:              looseString(raw["nombre"]),
		Precio:              looseDecimal(raw["precio"]),
		Descripcion:         looseString(raw["descripcion"]),
		TipoProductoNombre:  looseString(raw["tipoProductoNombre"]),
		TipoProducto:        looseString(raw["tipoProducto"]),
		Tipo:                looseString(raw["tipo"]),
		ClasificacionNombre: looseString(raw["clasificacionNombre"]),
		EstadoNombre:        looseString(raw["estadoNombre"]),
		Saga:                looseString(raw["saga"]),
		SagaNombre:          looseString(raw["sagaNombre"]),
		Imagenes:            looseNames(raw["imagenes"], "url", "ruta", "nombre"),
		Plataformas:         plats,
		Generos:             looseNames(raw["generos"], "nombre"),
		Empresas:            looseNames(raw["empresas"], "nombre"),
		Desarrolladores:     looseNames(raw["desarrolladores"], "nombre"),
		LinksCompra:         looseLinks(raw["linksCompra"]),
		platformPos:         pos,
	}
	return nil
}

// SagaSummary is one entry of /productos/sagas/resumen.
type SagaSummary struct {
	Nombre      string  `json:"nombre"`
	PortadaSaga *string `json:"portadaSaga"`
}

// LookupItem is a reference-catalog entry (plataforma, género, estado, ...).
type LookupItem struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

func (l *LookupItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = LookupItem{ID: looseInt(raw["id"]), Nombre: looseString(raw["nombre"])}
	return nil
}

// Page is the normalized paginated envelope.
type Page struct {
	Content       []Product `json:"content"`
	Page          int       `json:"page"`
	TotalPages    int       `json:"totalPages"`
	TotalElements int       `json:"totalElements"`
}

// ProductInput is the create/update payload.
// swagger:model ProductInput
type ProductInput struct {
	Nombre             string          `json:"nombre" validate:"required,max=200" example:"Minecraft: Dungeons"`
	Precio             decimal.Decimal `json:"precio" example:"19990"`
	Descripcion        string          `json:"descripcion,omitempty"`
	TipoProductoID     int64           `json:"tipoProductoId" validate:"required,gt=0" example:"2"`
	ClasificacionID    int64           `json:"clasificacionId,omitempty" validate:"gte=0"`
	EstadoID           int64           `json:"estadoId" validate:"required,gt=0" example:"1"`
	Saga               string          `json:"saga,omitempty" validate:"max=120" example:"Minecraft"`
	PortadaSaga        string          `json:"portadaSaga,omitempty" validate:"omitempty,url"`
	Imagenes           []string        `json:"imagenes,omitempty"`
	PlataformasIDs     []int64         `json:"plataformasIds,omitempty" validate:"dive,gt=0"`
	GenerosIDs         []int64         `json:"generosIds,omitempty" validate:"dive,gt=0"`
	EmpresasIDs        []int64         `json:"empresasIds,omitempty" validate:"dive,gt=0"`
	DesarrolladoresIDs []int64         `json:"desarrolladoresIds,omitempty" validate:"dive,gt=0"`
	LinksCompra        []PurchaseLink  `json:"linksCompra,omitempty" validate:"dive"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

func isNull(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

func looseString(b json.RawMessage) string {
	if isNull(b) {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	// {"nombre": "..."} en vez de string plano
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err == nil {
		return looseString(obj["nombre"])
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		return n.String()
	}
	return ""
}

func looseInt(b json.RawMessage) int64 {
	if isNull(b) {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			return v
		}
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return v
		}
	}
	return 0
}

func looseDecimal(b json.RawMessage) decimal.Decimal {
	if isNull(b) {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(b, &d); err != nil {
		return decimal.Zero
	}
	return d
}

// looseNames reads an array of strings or of objects carrying the name in one
// of keys. Anything else yields an empty (non-nil) slice.
func looseNames(b json.RawMessage, keys ...string) []string {
	out, _ := looseNamesAt(b, keys...)
	return out
}

// looseNamesAt is looseNames that also reports the array index of every name
// kept. Nulls, blanks and nameless objects are skipped.
func looseNamesAt(b json.RawMessage, keys ...string) ([]string, []int) {
	out, pos := []string{}, []int{}
	if isNull(b) {
		return out, pos
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return out, pos
	}
	for i, it := range items {
		if name := looseName(it, keys); name != "" {
			out = append(out, name)
			pos = append(pos, i)
		}
	}
	return out, pos
}

func looseName(it json.RawMessage, keys []string) string {
	var s string
	if err := json.Unmarshal(it, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(it, &obj); err != nil {
		return ""
	}
	for _, k := range keys {
		if v := strings.TrimSpace(looseString(obj[k])); v != "" {
			return v
		}
	}
	return ""
}

func looseLinks(b json.RawMessage) []PurchaseLink {
	out := []PurchaseLink{}
	if isNull(b) {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return out
	}
	// positions matter: linksCompra[i] pairs with plataformas[i]
	for _, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err == nil {
			out = append(out, PurchaseLink{URL: strings.TrimSpace(s)})
			continue
		}
		var obj map[string]json.RawMessage
		_ = json.Unmarshal(it, &obj)
		out = append(out, PurchaseLink{URL: strings.TrimSpace(looseString(obj["url"]))})
	}
	return out
}
