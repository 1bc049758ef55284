// Package storage is the durable key-value port behind cart, favorites and
// the session token. Every key lives in a namespace, one per storefront
// session.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Keys used by the storefront.
const (
	KeyCart      = "carrito"
	KeyCartTotal = "totalCompra"
	KeyFavorites = "favoritos"
	KeyToken     = "nl_token"
)

var (
	ErrNotFound         = errors.New("storage: key not found")
	ErrInvalidNamespace = errors.New("storage: invalid namespace")
)

var namespaceRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidNamespace reports whether ns can be used as a session namespace.
func ValidNamespace(ns string) bool { return namespaceRe.MatchString(ns) }

// Backend stores opaque values per namespace and key.
type Backend interface {
	Load(ctx context.Context, namespace, key string) ([]byte, error)
	Save(ctx context.Context, namespace, key string, value []byte) error
	Remove(ctx context.Context, namespace, key string) error
}

// KV is a Backend bound to one namespace.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

type bound struct {
	b  Backend
	ns string
}

// Bind scopes b to namespace.
func Bind(b Backend, namespace string) KV { return bound{b: b, ns: namespace} }

func (s bound) Load(ctx context.Context, key string) ([]byte, error) {
	return s.b.Load(ctx, s.ns, key)
}

func (s bound) Save(ctx context.Context, key string, value []byte) error {
	return s.b.Save(ctx, s.ns, key, value)
}

func (s bound) Remove(ctx context.Context, key string) error {
	return s.b.Remove(ctx, s.ns, key)
}

func checkNamespace(ns string) error {
	if !ValidNamespace(ns) {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, ns)
	}
	return nil
}
