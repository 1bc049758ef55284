package product

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The backend is not consistent about list shapes: some endpoints answer a
// bare array, others {content: [...]} or {contenido: [...]}, and paginated
// ones spell the counters in English or Spanish.

// listItems extracts the raw records of any of the three list shapes.
func listItems(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(body, &arr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return arr, nil
	}
	var env struct {
		Content   []json.RawMessage `json:"content"`
		Contenido []json.RawMessage `json:"contenido"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Contenido != nil {
		return env.Contenido, nil
	}
	return env.Content, nil
}

// decodeEach decodes records one by one. A record that cannot be decoded is
// reported through skip and left out; it never fails the whole list.
func decodeEach[T any](items []json.RawMessage, skip func(i int, err error)) []T {
	out := make([]T, 0, len(items))
	for i, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			if skip != nil {
				skip(i, err)
			}
			continue
		}
		out = append(out, v)
	}
	return out
}

type pageEnvelope struct {
	Content        []json.RawMessage `json:"content"`
	Contenido      []json.RawMessage `json:"contenido"`
	Page           *int              `json:"page"`
	Pagina         *int              `json:"pagina"`
	TotalPages     *int              `json:"totalPages"`
	TotalPaginas   *int              `json:"totalPaginas"`
	TotalElements  *int              `json:"totalElements"`
	TotalElementos *int              `json:"totalElementos"`
}

func decodePage(body []byte, requested int, skip func(i int, err error)) (Page, error) {
	var env pageEnvelope
	if err := json.Unmarshal(bytes.TrimSpace(body), &env); err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw := env.Content
	if raw == nil {
		raw = env.Contenido
	}
	content := decodeEach[Product](raw, skip)
	return Page{
		Content:       content,
		Page:          firstInt(requested, env.Page, env.Pagina),
		TotalPages:    firstInt(1, env.TotalPages, env.TotalPaginas),
		TotalElements: firstInt(len(content), env.TotalElements, env.TotalElementos),
	}, nil
}

func firstInt(def int, vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return def
}
