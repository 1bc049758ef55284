// File: internal/product/repo.go
// Package product wraps the NoLimits backend REST API for products and
// reference catalogs, and caches the full product list.
package product

import (
	"context"
	"fmt"
)

// Repository is the backend as seen by the storefront. *Client implements it
// over HTTP; tests use in-memory stubs.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Page(ctx context.Context, page, size int) (Page, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, in ProductInput) (*Product, error)
	Update(ctx context.Context, id int64, in ProductInput) (*Product, error)
	Delete(ctx context.Context, id int64) error
	Sagas(ctx context.Context) ([]SagaSummary, error)
	Lookup(ctx context.Context, kind LookupKind) ([]LookupItem, error)
}

// LookupKind names a reference catalog.
type LookupKind string

const (
	LookupTiposProducto   LookupKind = "tipo-productos"
	LookupClasificaciones LookupKind = "clasificaciones"
	LookupEstados         LookupKind = "estados"
	LookupPlataformas     LookupKind = "plataformas"
	LookupGeneros         LookupKind = "generos"
	LookupEmpresas        LookupKind = "empresas"
	LookupDesarrolladores LookupKind = "desarrolladores"
)

// lookupPageSize covers every reference catalog in one page.
const lookupPageSize = 100

// ParseLookupKind validates a kind coming from a URL.
func ParseLookupKind(s string) (LookupKind, error) {
	switch k := LookupKind(s); k {
	case LookupTiposProducto, LookupClasificaciones, LookupEstados,
		LookupPlataformas, LookupGeneros, LookupEmpresas, LookupDesarrolladores:
		return k, nil
	}
	return "", fmt.Errorf("unknown lookup %q", s)
}

// path returns the endpoint for the kind: flat lists for the first three,
// the paginated variant for the rest.
func (k LookupKind) path() string {
	switch k {
	case LookupTiposProducto, LookupClasificaciones, LookupEstados:
		return "/api/v1/" + string(k)
	default:
		return fmt.Sprintf("/api/v1/%s/paginado?page=1&size=%d", k, lookupPageSize)
	}
}
