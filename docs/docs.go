// Package docs registers the OpenAPI document served at /swagger. It follows
// the swag annotations in cmd/storefront and is kept in step with them by hand.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/sagas": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Sagas con portada resuelta",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/main.sagaView"}}}
                }
            }
        },
        "/sagas/{saga}/sections": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Secciones (películas, videojuegos, accesorios) de una saga",
                "parameters": [
                    {"type": "string", "description": "Nombre de la saga", "name": "saga", "in": "path", "required": true},
                    {"type": "boolean", "description": "Ignora la caché", "name": "refresh", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.Sections"}}
                }
            }
        },
        "/sagas/{saga}/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Busca un producto por nombre dentro de la saga",
                "parameters": [
                    {"type": "string", "name": "saga", "in": "path", "required": true},
                    {"type": "string", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.SearchHit"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/product.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Lista paginada de productos",
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 3, "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/product.Page"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Crea un producto",
                "parameters": [
                    {"description": "Producto", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/product.ProductInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/product.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/product.HTTPError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Detalle de un producto",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/product.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Actualiza un producto",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"description": "Producto", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/product.ProductInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/product.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            },
            "delete": {
                "tags": ["products"],
                "summary": "Elimina un producto",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/lookups/{kind}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Catálogos de referencia",
                "parameters": [
                    {"enum": ["tipo-productos", "clasificaciones", "estados", "plataformas", "generos", "empresas", "desarrolladores"], "type": "string", "name": "kind", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/product.LookupItem"}}}
                }
            }
        },
        "/cart": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Carrito de la sesión",
                "parameters": [{"type": "integer", "default": 1, "name": "page", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartView"}}}
            },
            "delete": {
                "tags": ["cart"],
                "summary": "Vacía el carrito",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartView"}}}
            }
        },
        "/cart/items": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Agrega un producto al carrito",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.addItemRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/cart/items/{id}": {
            "delete": {
                "tags": ["cart"],
                "summary": "Quita una línea del carrito",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/cart/items/{id}/increment": {
            "post": {
                "tags": ["cart"],
                "summary": "Suma una unidad",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartView"}}}
            }
        },
        "/cart/items/{id}/decrement": {
            "post": {
                "tags": ["cart"],
                "summary": "Resta una unidad",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartView"}}}
            }
        },
        "/favorites": {
            "get": {
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Favoritos de la sesión",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalog.Slide"}}}}
            },
            "delete": {
                "tags": ["favorites"],
                "summary": "Borra todos los favoritos",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/favorites/toggle": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Agrega o quita un favorito",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/catalog.Slide"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/main.toggleResponse"}}}
            }
        },
        "/favorites/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Un favorito",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.Slide"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            },
            "delete": {
                "tags": ["favorites"],
                "summary": "Quita un favorito",
                "description": "Quitar un id que no está en la lista también responde 204.",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/session/token": {
            "delete": {
                "tags": ["session"],
                "summary": "Cierra la sesión del backend",
                "description": "Olvida el token guardado para la sesión de la cookie.",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "product.HTTPError": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "not found"}}
        },
        "product.LookupItem": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "nombre": {"type": "string"}}
        },
        "product.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "nombre": {"type": "string"},
                "precio": {"type": "string"},
                "descripcion": {"type": "string"},
                "tipoProductoNombre": {"type": "string"},
                "clasificacionNombre": {"type": "string"},
                "estadoNombre": {"type": "string"},
                "saga": {"type": "string"},
                "imagenes": {"type": "array", "items": {"type": "string"}},
                "plataformas": {"type": "array", "items": {"type": "string"}},
                "generos": {"type": "array", "items": {"type": "string"}},
                "empresas": {"type": "array", "items": {"type": "string"}},
                "desarrolladores": {"type": "array", "items": {"type": "string"}},
                "linksCompra": {"type": "array", "items": {"type": "object", "properties": {"url": {"type": "string"}}}}
            }
        },
        "product.Page": {
            "type": "object",
            "properties": {
                "content": {"type": "array", "items": {"$ref": "#/definitions/product.Product"}},
                "page": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "totalElements": {"type": "integer"}
            }
        },
        "product.ProductInput": {
            "type": "object",
            "required": ["nombre", "tipoProductoId", "estadoId"],
            "properties": {
                "nombre": {"type": "string", "example": "Minecraft: Dungeons"},
                "precio": {"type": "string", "example": "19990"},
                "descripcion": {"type": "string"},
                "tipoProductoId": {"type": "integer", "example": 2},
                "clasificacionId": {"type": "integer"},
                "estadoId": {"type": "integer", "example": 1},
                "saga": {"type": "string", "example": "Minecraft"},
                "portadaSaga": {"type": "string"},
                "imagenes": {"type": "array", "items": {"type": "string"}},
                "plataformasIds": {"type": "array", "items": {"type": "integer"}},
                "generosIds": {"type": "array", "items": {"type": "integer"}},
                "empresasIds": {"type": "array", "items": {"type": "integer"}},
                "desarrolladoresIds": {"type": "array", "items": {"type": "integer"}},
                "linksCompra": {"type": "array", "items": {"type": "object", "properties": {"url": {"type": "string"}}}}
            }
        },
        "catalog.Slide": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "price": {"type": "string"},
                "priceLabel": {"type": "string", "example": "$19.990"},
                "desc": {"type": "string"},
                "src": {"type": "string"},
                "alt": {"type": "string"},
                "tipo": {"type": "string"},
                "clasificacion": {"type": "string"},
                "estado": {"type": "string"},
                "saga": {"type": "string"},
                "imagenes": {"type": "array", "items": {"type": "string"}},
                "plataformas": {"type": "array", "items": {"type": "string"}},
                "generos": {"type": "array", "items": {"type": "string"}},
                "empresas": {"type": "array", "items": {"type": "string"}},
                "desarrolladores": {"type": "array", "items": {"type": "string"}},
                "platformUrlMap": {"type": "object", "additionalProperties": {"type": "string"}},
                "urlCompra": {"type": "string"}
            }
        },
        "catalog.Sections": {
            "type": "object",
            "properties": {
                "saga": {"type": "string"},
                "peliculas": {"type": "array", "items": {"$ref": "#/definitions/catalog.Slide"}},
                "videojuegos": {"type": "array", "items": {"$ref": "#/definitions/catalog.Slide"}},
                "accesorios": {"type": "array", "items": {"$ref": "#/definitions/catalog.Slide"}}
            }
        },
        "catalog.SearchHit": {
            "type": "object",
            "properties": {
                "section": {"type": "string"},
                "index": {"type": "integer"},
                "id": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "main.sagaView": {
            "type": "object",
            "properties": {"nombre": {"type": "string"}, "portadaSaga": {"type": "string"}}
        },
        "main.addItemRequest": {
            "type": "object",
            "required": ["idProducto"],
            "properties": {
                "idProducto": {"type": "integer"}
            }
        },
        "main.cartView": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "page": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "total": {"type": "string"},
                "totalLabel": {"type": "string", "example": "$39.980"},
                "units": {"type": "integer"}
            }
        },
        "main.toggleResponse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "favorite": {"type": "boolean"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "NoLimits Storefront API",
	Description:      "Catálogo por saga, carrito y favoritos sobre el backend NoLimits.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
