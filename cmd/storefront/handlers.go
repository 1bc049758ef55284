package main

import (
	"context"
	"errors"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/MikeMC777/nolimits-storefront/internal/cart"
	"github.com/MikeMC777/nolimits-storefront/internal/catalog"
	"github.com/MikeMC777/nolimits-storefront/internal/favorites"
	"github.com/MikeMC777/nolimits-storefront/internal/httpx"
	"github.com/MikeMC777/nolimits-storefront/internal/money"
	"github.com/MikeMC777/nolimits-storefront/internal/product"
	"github.com/MikeMC777/nolimits-storefront/internal/storage"

	_ "github.com/MikeMC777/nolimits-storefront/docs"
)

// server bundles what the handlers need.
type server struct {
	products *product.Service
	builder  *catalog.Builder
	images   *catalog.ImageResolver
	store    storage.Backend
	locks    *sessionLocks
	log      *zap.Logger
	assetDir string
}

// sessionLocks serializes cart and favorites mutations of one session. Ids
// hash onto a fixed set of mutexes.
type sessionLocks struct{ mu [64]sync.Mutex }

func (l *sessionLocks) lock(sid string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sid))
	m := &l.mu[h.Sum32()%uint32(len(l.mu))]
	m.Lock()
	return m.Unlock
}

func newRouter(s *server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Session(), httpx.Bearer(s.store, s.log), httpx.Logger(s.log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.GET("/sagas", sagasHandler(s))
	r.GET("/sagas/:saga/sections", sectionsHandler(s))
	r.GET("/sagas/:saga/search", searchHandler(s))

	r.GET("/products", listProductsHandler(s))
	r.GET("/products/:id", getProductHandler(s))
	r.POST("/products", createProductHandler(s))
	r.PUT("/products/:id", updateProductHandler(s))
	r.DELETE("/products/:id", deleteProductHandler(s))
	r.GET("/lookups/:kind", lookupHandler(s))

	r.GET("/cart", getCartHandler(s))
	r.DELETE("/cart", clearCartHandler(s))
	r.POST("/cart/items", addCartItemHandler(s))
	r.POST("/cart/items/:id/increment", cartItemHandler(s, (*cart.Cart).Increment))
	r.POST("/cart/items/:id/decrement", cartItemHandler(s, (*cart.Cart).Decrement))
	r.DELETE("/cart/items/:id", cartItemHandler(s, (*cart.Cart).Remove))

	r.GET("/favorites", listFavoritesHandler(s))
	r.DELETE("/favorites", clearFavoritesHandler(s))
	r.POST("/favorites/toggle", toggleFavoriteHandler(s))
	r.GET("/favorites/:id", getFavoriteHandler(s))
	r.DELETE("/favorites/:id", removeFavoriteHandler(s))

	r.DELETE("/session/token", logoutHandler(s))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if s.assetDir != "" {
		r.Static("/assets", s.assetDir)
	}
	return r
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, product.HTTPError{Error: msg})
}

// writeError maps a backend write failure: local validation is 400, a 4xx
// from the backend is mirrored with its message, anything else is 502.
func writeError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	var apiErr *product.APIError
	switch {
	case errors.Is(err, product.ErrInvalidInput):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		fail(c, apiErr.Status, product.Message(err, fallback))
	default:
		fail(c, http.StatusBadGateway, product.Message(err, fallback))
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// ===== Catálogo =====

type sagaView struct {
	Nombre      string  `json:"nombre"`
	PortadaSaga *string `json:"portadaSaga"`
}

// @Summary Sagas con portada resuelta
// @Tags    catalog
// @Produce json
// @Success 200 {array} sagaView
// @Router  /sagas [get]
func sagasHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := []sagaView{}
		sagas, err := s.products.Sagas(c.Request.Context())
		if err != nil {
			s.log.Warn("sagas unavailable", zap.Error(err))
			c.JSON(http.StatusOK, out)
			return
		}
		for _, sg := range sagas {
			out = append(out, sagaView{Nombre: sg.Nombre, PortadaSaga: s.images.SagaCover(sg)})
		}
		c.JSON(http.StatusOK, out)
	}
}

func (s *server) sections(ctx context.Context, saga string, refresh bool) catalog.Sections {
	all, err := s.products.ListProducts(ctx, refresh)
	if err != nil {
		s.log.Warn("products unavailable", zap.String("saga", saga), zap.Error(err))
		all = nil
	}
	return s.builder.Build(all, saga)
}

// @Summary Secciones de una saga
// @Tags    catalog
// @Produce json
// @Param   saga    path  string true  "Nombre de la saga"
// @Param   refresh query bool   false "Ignora la caché"
// @Success 200 {object} catalog.Sections
// @Router  /sagas/{saga}/sections [get]
func sectionsHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		refresh, _ := strconv.ParseBool(c.Query("refresh"))
		c.JSON(http.StatusOK, s.sections(c.Request.Context(), c.Param("saga"), refresh))
	}
}

// @Summary Busca un producto por nombre dentro de la saga
// @Tags    catalog
// @Produce json
// @Param   saga path  string true "Nombre de la saga"
// @Param   q    query string true "Texto a buscar"
// @Success 200 {object} catalog.SearchHit
// @Failure 400 {object} product.HTTPError
// @Failure 404 {object} product.HTTPError
// @Router  /sagas/{saga}/search [get]
func searchHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			fail(c, http.StatusBadRequest, "q is required")
			return
		}
		hit, ok := s.sections(c.Request.Context(), c.Param("saga"), false).Find(q)
		if !ok {
			fail(c, http.StatusNotFound, "No se encontró ningún producto con ese nombre en la saga seleccionada.")
			return
		}
		c.JSON(http.StatusOK, hit)
	}
}

// ===== Productos =====

// @Summary Lista paginada de productos
// @Tags    products
// @Produce json
// @Param   page query int false "Página (desde 1)" default(1)
// @Param   size query int false "Tamaño de página" default(3)
// @Success 200 {object} product.Page
// @Router  /products [get]
func listProductsHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "3"))
		if page < 1 {
			page = 1
		}
		res, err := s.products.Page(c.Request.Context(), page, size)
		if err != nil {
			s.log.Warn("product page unavailable", zap.Int("page", page), zap.Error(err))
			res = product.Page{Content: []product.Product{}, Page: page, TotalPages: 1}
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary Detalle de un producto
// @Tags    products
// @Produce json
// @Param   id path int true "ID"
// @Success 200 {object} product.Product
// @Failure 404 {object} product.HTTPError
// @Router  /products/{id} [get]
func getProductHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		p, err := s.products.GetByID(c.Request.Context(), id)
		if errors.Is(err, product.ErrNotFound) {
			fail(c, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeError(c, err, "No se pudo cargar el producto")
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary Crea un producto
// @Tags    products
// @Accept  json
// @Produce json
// @Param   body body product.ProductInput true "Producto"
// @Success 201 {object} product.Product
// @Failure 400 {object} product.HTTPError
// @Failure 502 {object} product.HTTPError
// @Router  /products [post]
func createProductHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in product.ProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		p, err := s.products.Create(c.Request.Context(), in)
		if err != nil {
			writeError(c, err, "No se pudo crear el producto")
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// @Summary Actualiza un producto
// @Tags    products
// @Accept  json
// @Produce json
// @Param   id   path int                  true "ID"
// @Param   body body product.ProductInput true "Producto"
// @Success 200 {object} product.Product
// @Failure 400 {object} product.HTTPError
// @Router  /products/{id} [put]
func updateProductHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var in product.ProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		p, err := s.products.Update(c.Request.Context(), id, in)
		if err != nil {
			writeError(c, err, "No se pudo actualizar el producto")
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary Elimina un producto
// @Tags    products
// @Param   id path int true "ID"
// @Success 204
// @Failure 404 {object} product.HTTPError
// @Router  /products/{id} [delete]
func deleteProductHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := s.products.Delete(c.Request.Context(), id); err != nil {
			writeError(c, err, "No se pudo eliminar el producto")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary Catálogos de referencia
// @Tags    products
// @Produce json
// @Param   kind path string true "tipo-productos | clasificaciones | estados | plataformas | generos | empresas | desarrolladores"
// @Success 200 {array} product.LookupItem
// @Failure 400 {object} product.HTTPError
// @Router  /lookups/{kind} [get]
func lookupHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := product.ParseLookupKind(c.Param("kind"))
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		items, err := s.products.Lookup(c.Request.Context(), kind)
		if err != nil {
			s.log.Warn("lookup unavailable", zap.String("kind", string(kind)), zap.Error(err))
			items = []product.LookupItem{}
		}
		c.JSON(http.StatusOK, items)
	}
}

// findProduct looks in the cached list first, then asks the backend.
func (s *server) findProduct(ctx context.Context, id int64) (*product.Product, error) {
	if all, err := s.products.ListProducts(ctx, false); err == nil {
		for i := range all {
			if all[i].ID == id {
				p := all[i]
				return &p, nil
			}
		}
	}
	return s.products.GetByID(ctx, id)
}

// @Summary Cierra la sesión del backend
// @Description Olvida el token guardado para la sesión de la cookie.
// @Tags    session
// @Success 204
// @Router  /session/token [delete]
func logoutHandler(s *server) gin.HandlerFunc {
	return httpx.Logout(s.store, s.log)
}

// ===== Carrito =====

type lineView struct {
	cart.Item
	PrecioLabel   string          `json:"precioLabel"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	SubtotalLabel string          `json:"subtotalLabel"`
}

type cartView struct {
	Items      []lineView      `json:"items"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
	Total      decimal.Decimal `json:"total"`
	TotalLabel string          `json:"totalLabel"`
	Units      int             `json:"units"`
}

func viewCart(k *cart.Cart, page int) cartView {
	pv := k.Page(page, cart.DefaultPageSize)
	lines := make([]lineView, 0, len(pv.Items))
	for _, it := range pv.Items {
		lines = append(lines, lineView{
			Item:          it,
			PrecioLabel:   money.FormatCLP(it.Precio),
			Subtotal:      it.Subtotal(),
			SubtotalLabel: money.FormatCLP(it.Subtotal()),
		})
	}
	return cartView{
		Items:      lines,
		Page:       pv.Page,
		TotalPages: pv.TotalPages,
		Total:      k.Total(),
		TotalLabel: money.FormatCLP(k.Total()),
		Units:      k.Units(),
	}
}

// withCart loads the session cart under the session lock.
func (s *server) withCart(c *gin.Context, fn func(k *cart.Cart)) {
	sid := httpx.SessionID(c)
	defer s.locks.lock(sid)()
	fn(cart.Load(c.Request.Context(), storage.Bind(s.store, sid), s.log))
}

func cartError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, cart.ErrInvalidProduct):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, "No se pudo guardar el carrito")
	}
}

// @Summary Carrito de la sesión
// @Tags    cart
// @Produce json
// @Param   page query int false "Página del panel (5 por página)" default(1)
// @Success 200 {object} cartView
// @Router  /cart [get]
func getCartHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		s.withCart(c, func(k *cart.Cart) {
			c.JSON(http.StatusOK, viewCart(k, page))
		})
	}
}

// @Summary Vacía el carrito
// @Tags    cart
// @Success 200 {object} cartView
// @Router  /cart [delete]
func clearCartHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.withCart(c, func(k *cart.Cart) {
			if err := k.Clear(c.Request.Context()); err != nil {
				cartError(c, err)
				return
			}
			c.JSON(http.StatusOK, viewCart(k, 1))
		})
	}
}

type addItemRequest struct {
	IDProducto int64 `json:"idProducto" binding:"required,gt=0"`
}

// @Summary Agrega un producto al carrito
// @Description Nombre y precio se toman siempre del catálogo.
// @Tags    cart
// @Accept  json
// @Produce json
// @Param   body body addItemRequest true "Producto"
// @Success 200 {object} cartView
// @Failure 400 {object} product.HTTPError
// @Failure 404 {object} product.HTTPError
// @Router  /cart/items [post]
func addCartItemHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		p, err := s.findProduct(c.Request.Context(), req.IDProducto)
		if errors.Is(err, product.ErrNotFound) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			writeError(c, err, "No se pudo cargar el producto")
			return
		}
		s.withCart(c, func(k *cart.Cart) {
			if err := k.Add(c.Request.Context(), req.IDProducto, p.Nombre, p.Precio); err != nil {
				cartError(c, err)
				return
			}
			c.JSON(http.StatusOK, viewCart(k, 1))
		})
	}
}

// cartItemHandler serves increment, decrement and remove, which share shape.
func cartItemHandler(s *server, op func(*cart.Cart, context.Context, int64) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		s.withCart(c, func(k *cart.Cart) {
			if err := op(k, c.Request.Context(), id); err != nil {
				cartError(c, err)
				return
			}
			c.JSON(http.StatusOK, viewCart(k, page))
		})
	}
}

// ===== Favoritos =====

func (s *server) withFavorites(c *gin.Context, fn func(f *favorites.Favorites)) {
	sid := httpx.SessionID(c)
	defer s.locks.lock(sid)()
	fn(favorites.Load(c.Request.Context(), storage.Bind(s.store, sid), s.log))
}

// @Summary Favoritos de la sesión, el más reciente primero
// @Tags    favorites
// @Produce json
// @Success 200 {array} catalog.Slide
// @Router  /favorites [get]
func listFavoritesHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.withFavorites(c, func(f *favorites.Favorites) {
			items := f.Items()
			for i := range items {
				items[i].Src = s.images.FavoriteImage(items[i])
			}
			c.JSON(http.StatusOK, items)
		})
	}
}

// @Summary Un favorito
// @Tags    favorites
// @Produce json
// @Param   id path int true "ID"
// @Success 200 {object} catalog.Slide
// @Failure 404 {object} product.HTTPError
// @Router  /favorites/{id} [get]
func getFavoriteHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		s.withFavorites(c, func(f *favorites.Favorites) {
			sl, found := f.Get(id)
			if !found {
				fail(c, http.StatusNotFound, "not found")
				return
			}
			sl.Src = s.images.FavoriteImage(sl)
			c.JSON(http.StatusOK, sl)
		})
	}
}

type toggleResponse struct {
	ID       int64 `json:"id"`
	Favorite bool  `json:"favorite"`
}

// @Summary Agrega o quita un favorito
// @Description Con solo el id, la ficha se arma desde el catálogo.
// @Tags    favorites
// @Accept  json
// @Produce json
// @Param   body body catalog.Slide true "Ficha del producto"
// @Success 200 {object} toggleResponse
// @Router  /favorites/toggle [post]
func toggleFavoriteHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sl catalog.Slide
		if err := c.ShouldBindJSON(&sl); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		if sl.ID != 0 && strings.TrimSpace(sl.Name) == "" {
			p, err := s.findProduct(c.Request.Context(), sl.ID)
			if errors.Is(err, product.ErrNotFound) {
				fail(c, http.StatusNotFound, "product not found")
				return
			}
			if err != nil {
				writeError(c, err, "No se pudo cargar el producto")
				return
			}
			sl = s.images.NewSlide(*p)
		}
		s.withFavorites(c, func(f *favorites.Favorites) {
			on, err := f.Toggle(c.Request.Context(), sl)
			if err != nil {
				_ = c.Error(err)
				fail(c, http.StatusInternalServerError, "No se pudieron guardar los favoritos")
				return
			}
			c.JSON(http.StatusOK, toggleResponse{ID: sl.ID, Favorite: on})
		})
	}
}

// @Summary Quita un favorito
// @Description Quitar un id que no está en la lista también responde 204.
// @Tags    favorites
// @Param   id path int true "ID"
// @Success 204
// @Router  /favorites/{id} [delete]
func removeFavoriteHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		s.withFavorites(c, func(f *favorites.Favorites) {
			if err := f.Remove(c.Request.Context(), id); err != nil {
				_ = c.Error(err)
				fail(c, http.StatusInternalServerError, "No se pudieron guardar los favoritos")
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}

// @Summary Borra todos los favoritos
// @Tags    favorites
// @Success 204
// @Router  /favorites [delete]
func clearFavoritesHandler(s *server) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.withFavorites(c, func(f *favorites.Favorites) {
			if err := f.Clear(c.Request.Context()); err != nil {
				_ = c.Error(err)
				fail(c, http.StatusInternalServerError, "No se pudieron guardar los favoritos")
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}
