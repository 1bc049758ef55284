package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/nolimits-storefront/internal/catalog"
	"github.com/MikeMC777/nolimits-storefront/internal/httpx"
	prod "github.com/MikeMC777/nolimits-storefront/internal/product"
	"github.com/MikeMC777/nolimits-storefront/internal/storage"
)

//
// ===== STUB REPO EN MEMORIA (implementa product.Repository) =====
//

type stubRepo struct {
	mu       sync.Mutex
	items    map[int64]prod.Product
	sagas    []prod.SagaSummary
	lists    int
	down     bool // simula backend caído en lecturas
	writeErr error
	lastTok  string
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: make(map[int64]prod.Product)}
}

func (s *stubRepo) put(p prod.Product) { s.items[p.ID] = p }

func (s *stubRepo) List(ctx context.Context) ([]prod.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	s.lastTok = prod.BearerFromContext(ctx)
	if s.down {
		return nil, &prod.APIError{Status: 503, Body: "mantención"}
	}
	out := make([]prod.Product, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) Page(ctx context.Context, page, size int) (prod.Page, error) {
	all, err := s.List(ctx)
	if err != nil {
		return prod.Page{}, err
	}
	start := (page - 1) * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	pages := (len(all) + size - 1) / size
	return prod.Page{Content: all[start:end], Page: page, TotalPages: pages, TotalElements: len(all)}, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id int64) (*prod.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, &prod.APIError{Status: 404, Body: "Producto no encontrado"}
	}
	return &p, nil
}

func (s *stubRepo) Create(ctx context.Context, in prod.ProductInput) (*prod.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	p := prod.Product{ID: int64(len(s.items) + 100), Nombre: in.Nombre, Precio: in.Precio, Saga: in.Saga}
	s.items[p.ID] = p
	return &p, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, in prod.ProductInput) (*prod.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	p, ok := s.items[id]
	if !ok {
		return nil, &prod.APIError{Status: 404, Body: "Producto no encontrado"}
	}
	p.Nombre, p.Precio = in.Nombre, in.Precio
	s.items[id] = p
	return &p, nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return &prod.APIError{Status: 404, Body: "Producto no encontrado"}
	}
	delete(s.items, id)
	return nil
}

func (s *stubRepo) Sagas(ctx context.Context) ([]prod.SagaSummary, error) {
	if s.down {
		return nil, &prod.APIError{Status: 503}
	}
	return s.sagas, nil
}

func (s *stubRepo) Lookup(ctx context.Context, kind prod.LookupKind) ([]prod.LookupItem, error) {
	if s.down {
		return nil, &prod.APIError{Status: 503}
	}
	return []prod.LookupItem{{ID: 1, Nombre: string(kind)}}, nil
}

func minecraftRepo() *stubRepo {
	repo := newStubRepo()
	repo.put(prod.Product{ID: 1, Nombre: "Minecraft: Dungeons", Precio: decimal.NewFromInt(19990),
		TipoProductoNombre: "Videojuego", Saga: "Minecraft",
		Plataformas: []string{"Steam", "Xbox"},
		LinksCompra: []prod.PurchaseLink{{URL: "https://www.xbox.com/x"}, {URL: "https://store.steampowered.com/app/1"}}})
	repo.put(prod.Product{ID: 2, Nombre: "Minecraft: Java & Bedrock", Precio: decimal.NewFromInt(24990),
		TipoProductoNombre: "Videojuego", Saga: "Minecraft"})
	repo.put(prod.Product{ID: 3, Nombre: "Una película de Minecraft", Precio: decimal.NewFromInt(4990),
		TipoProductoNombre: "Película", Saga: "Minecraft"})
	repo.put(prod.Product{ID: 4, Nombre: "Spiderman 1", Precio: decimal.NewFromInt(3990),
		TipoProductoNombre: "Película", Saga: "Spider-Man"})
	cover := "https://cdn.example/minecraft.webp"
	repo.sagas = []prod.SagaSummary{{Nombre: "Minecraft", PortadaSaga: &cover}, {Nombre: "Spider-Man"}}
	return repo
}

//
// ===== ROUTER de pruebas =====
//

func newTestRouter(repo prod.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	images := catalog.NewImageResolver("http://localhost:8080/assets/img")
	return newRouter(&server{
		products: prod.NewService(repo, prod.NewCache(time.Minute, nil), zap.NewNop()),
		builder:  catalog.NewBuilder(images, zap.NewNop()),
		images:   images,
		store:    storage.NewMemoryStore(),
		locks:    &sessionLocks{},
		log:      zap.NewNop(),
	})
}

func do(r http.Handler, method, path, session, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if session != "" {
		req.Header.Set(httpx.HeaderSession, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

//
// ===== TESTS =====
//

func TestHealthz(t *testing.T) {
	r := newTestRouter(newStubRepo())
	w := do(r, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestSagas_ResolvesCovers(t *testing.T) {
	r := newTestRouter(minecraftRepo())
	w := do(r, http.MethodGet, "/sagas", "s1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got []sagaView
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json inválido: %v", err)
	}
	if len(got) != 2 || got[0].PortadaSaga == nil || *got[0].PortadaSaga != "https://cdn.example/minecraft.webp" {
		t.Fatalf("sagas inesperadas: %+v", got)
	}
	if got[1].PortadaSaga == nil || *got[1].PortadaSaga != "http://localhost:8080/assets/img/sagas/SagaSpiderman.webp" {
		t.Fatalf("portada local no resuelta: %+v", got[1])
	}
}

func TestSections_BuildsAndCaches(t *testing.T) {
	repo := minecraftRepo()
	r := newTestRouter(repo)

	w := do(r, http.MethodGet, "/sagas/Minecraft/sections", "s1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got catalog.Sections
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json inválido: %v", err)
	}
	if got.Saga != "Minecraft" || len(got.Peliculas) != 1 || len(got.Videojuegos) != 2 || len(got.Accesorios) != 0 {
		t.Fatalf("secciones inesperadas: %+v", got)
	}
	if got.Videojuegos[0].Name != "Minecraft: Java & Bedrock" {
		t.Fatalf("orden manual no aplicado: %s", got.Videojuegos[0].Name)
	}
	dungeons := got.Videojuegos[1]
	if dungeons.PlatformURLs["steam"] != "https://store.steampowered.com/app/1" ||
		dungeons.PlatformURLs["xbox"] != "https://www.xbox.com/x" {
		t.Fatalf("platformUrlMap inesperado: %+v", dungeons.PlatformURLs)
	}

	_ = do(r, http.MethodGet, "/sagas/Spider-Man/sections", "s1", "")
	if repo.lists != 1 {
		t.Fatalf("dentro del TTL debe pedirse una sola vez, lists=%d", repo.lists)
	}
	_ = do(r, http.MethodGet, "/sagas/Minecraft/sections?refresh=true", "s1", "")
	if repo.lists != 2 {
		t.Fatalf("refresh debe forzar la recarga, lists=%d", repo.lists)
	}
}

func TestSections_BackendDownDegradesToEmpty(t *testing.T) {
	repo := minecraftRepo()
	repo.down = true
	r := newTestRouter(repo)

	w := do(r, http.MethodGet, "/sagas/Minecraft/sections", "s1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got catalog.Sections
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Saga != "Minecraft" || got.Len() != 0 || got.Peliculas == nil {
		t.Fatalf("esperaba secciones vacías, got %+v", got)
	}

	for _, path := range []string{"/sagas", "/products", "/lookups/generos"} {
		w := do(r, http.MethodGet, path, "s1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", path, w.Code, w.Body.String())
		}
	}
}

func TestSearch(t *testing.T) {
	r := newTestRouter(minecraftRepo())

	if w := do(r, http.MethodGet, "/sagas/Minecraft/search?q=%20", "s1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("esperaba 400 por q vacía, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/sagas/Minecraft/search?q=spiderman", "s1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("esperaba 404 fuera de la saga, got %d", w.Code)
	}

	w := do(r, http.MethodGet, "/sagas/Minecraft/search?q=dungeons", "s1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var hit catalog.SearchHit
	_ = json.Unmarshal(w.Body.Bytes(), &hit)
	if hit.Section != catalog.SectionVideojuegos || hit.ID != 1 {
		t.Fatalf("hit inesperado: %+v", hit)
	}
}

func TestProducts_PageAndGet(t *testing.T) {
	r := newTestRouter(minecraftRepo())

	w := do(r, http.MethodGet, "/products?page=0&size=3", "s1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var page prod.Page
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if page.Page != 1 || len(page.Content) != 3 || page.TotalElements != 4 || page.TotalPages != 2 {
		t.Fatalf("página inesperada: %+v", page)
	}

	if w := do(r, http.MethodGet, "/products/2", "s1", ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/products/99", "s1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("esperaba 404, got %d body=%s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/products/abc", "s1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("esperaba 400, got %d", w.Code)
	}
}

func TestProducts_WritesInvalidateCache(t *testing.T) {
	repo := minecraftRepo()
	r := newTestRouter(repo)
	_ = do(r, http.MethodGet, "/sagas/Minecraft/sections", "s1", "")

	valid := `{"nombre":"Minecraft Legends","precio":"29990","tipoProductoId":2,"estadoId":1,"saga":"Minecraft"}`
	w := do(r, http.MethodPost, "/products", "s1", valid)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	_ = do(r, http.MethodGet, "/sagas/Minecraft/sections", "s1", "")
	if repo.lists != 2 {
		t.Fatalf("crear debe invalidar la caché, lists=%d", repo.lists)
	}

	// inválido: falta tipoProductoId
	invalid := `{"nombre":"X","estadoId":1}`
	if w := do(r, http.MethodPost, "/products", "s1", invalid); w.Code != http.StatusBadRequest {
		t.Fatalf("esperaba 400, got %d body=%s", w.Code, w.Body.String())
	}

	// el backend rechaza: se refleja su status y mensaje
	repo.writeErr = &prod.APIError{Status: http.StatusConflict, Body: "Ya existe un producto con ese nombre"}
	w = do(r, http.MethodPut, "/products/1", "s1", valid)
	if w.Code != http.StatusConflict {
		t.Fatalf("esperaba 409, got %d body=%s", w.Code, w.Body.String())
	}
	var e prod.HTTPError
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	if e.Error != "Ya existe un producto con ese nombre" {
		t.Fatalf("mensaje inesperado: %q", e.Error)
	}

	// backend caído ⇒ 502
	repo.writeErr = &prod.APIError{Status: http.StatusInternalServerError, Body: ""}
	if w := do(r, http.MethodPut, "/products/1", "s1", valid); w.Code != http.StatusBadGateway {
		t.Fatalf("esperaba 502, got %d", w.Code)
	}
	repo.writeErr = nil

	if w := do(r, http.MethodDelete, "/products/1", "s1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodDelete, "/products/1", "s1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("esperaba 404, got %d", w.Code)
	}
}

func TestLookups(t *testing.T) {
	r := newTestRouter(newStubRepo())
	if w := do(r, http.MethodGet, "/lookups/plataformas", "s1", ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/lookups/usuarios", "s1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("esperaba 400, got %d", w.Code)
	}
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartView {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var v cartView
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json inválido: %v", err)
	}
	return v
}

func TestCart_Flow(t *testing.T) {
	r := newTestRouter(minecraftRepo())

	_ = decodeCart(t, do(r, http.MethodPost, "/cart/items", "s1", `{"idProducto":3}`))
	_ = decodeCart(t, do(r, http.MethodPost, "/cart/items", "s1", `{"idProducto":1}`))
	v := decodeCart(t, do(r, http.MethodPost, "/cart/items", "s1", `{"idProducto":1}`))
	if len(v.Items) != 2 || v.Units != 3 || !v.Total.Equal(decimal.NewFromInt(4990+2*19990)) {
		t.Fatalf("carrito inesperado: %+v", v)
	}
	if v.Items[1].Nombre != "Minecraft: Dungeons" || v.TotalLabel == "" {
		t.Fatalf("línea inesperada: %+v", v.Items[1])
	}

	v = decodeCart(t, do(r, http.MethodPost, "/cart/items/3/decrement", "s1", ""))
	if len(v.Items) != 1 || v.Units != 2 {
		t.Fatalf("decrement a cero debe quitar la línea: %+v", v)
	}
	v = decodeCart(t, do(r, http.MethodPost, "/cart/items/1/increment", "s1", ""))
	if v.Units != 3 {
		t.Fatalf("units=%d, esperado=3", v.Units)
	}

	// otra sesión tiene su propio carrito
	other := decodeCart(t, do(r, http.MethodGet, "/cart", "s2", ""))
	if len(other.Items) != 0 {
		t.Fatalf("sesiones mezcladas: %+v", other)
	}

	if w := do(r, http.MethodPost, "/cart/items/77/increment", "s1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("esperaba 404, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/cart/items", "s1", `{"idProducto":0}`); w.Code != http.StatusBadRequest {
		t.Fatalf("esperaba 400, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/cart/items", "s1", `{"idProducto":99}`); w.Code != http.StatusNotFound {
		t.Fatalf("esperaba 404 por producto inexistente, got %d", w.Code)
	}

	v = decodeCart(t, do(r, http.MethodDelete, "/cart/items/1", "s1", ""))
	if len(v.Items) != 0 || !v.Total.IsZero() {
		t.Fatalf("carrito debería quedar vacío: %+v", v)
	}
	v = decodeCart(t, do(r, http.MethodDelete, "/cart", "s1", ""))
	if v.TotalPages != 1 {
		t.Fatalf("totalPages=%d", v.TotalPages)
	}
}

func TestCart_PriceAlwaysComesFromCatalog(t *testing.T) {
	r := newTestRouter(minecraftRepo())

	v := decodeCart(t, do(r, http.MethodPost, "/cart/items", "s1", `{"idProducto":1,"nombre":"Regalo","precio":1}`))
	if len(v.Items) != 1 || v.Items[0].Nombre != "Minecraft: Dungeons" || !v.Items[0].Precio.Equal(decimal.NewFromInt(19990)) {
		t.Fatalf("el carrito no debe aceptar nombre ni precio del cliente: %+v", v.Items)
	}
	if !v.Total.Equal(decimal.NewFromInt(19990)) {
		t.Fatalf("total=%s, esperado=19990", v.Total)
	}
}

func TestLogout_Route(t *testing.T) {
	r := newTestRouter(minecraftRepo())
	if w := do(r, http.MethodDelete, "/session/token", "s1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestSwaggerDoc(t *testing.T) {
	r := newTestRouter(newStubRepo())
	w := do(r, http.MethodGet, "/swagger/doc.json", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var doc struct {
		Info  struct{ Title string } `json:"info"`
		Paths map[string]any         `json:"paths"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json inválido: %v", err)
	}
	if doc.Info.Title != "NoLimits Storefront API" {
		t.Fatalf("title=%q", doc.Info.Title)
	}
	for _, path := range []string{"/sagas/{saga}/sections", "/cart/items", "/favorites/{id}", "/session/token"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Fatalf("falta %s en la documentación", path)
		}
	}
}

func TestCart_Pagination(t *testing.T) {
	repo := newStubRepo()
	for id := int64(1); id <= 6; id++ {
		repo.put(prod.Product{ID: id, Nombre: "P", Precio: decimal.NewFromInt(100)})
	}
	r := newTestRouter(repo)
	for id := 1; id <= 6; id++ {
		_ = do(r, http.MethodPost, "/cart/items", "s1", `{"idProducto":`+strconv.Itoa(id)+`}`)
	}
	v := decodeCart(t, do(r, http.MethodGet, "/cart?page=2", "s1", ""))
	if v.Page != 2 || v.TotalPages != 2 || len(v.Items) != 1 || v.Units != 6 {
		t.Fatalf("paginación inesperada: %+v", v)
	}
}

func TestFavorites_Flow(t *testing.T) {
	r := newTestRouter(minecraftRepo())

	// solo id: la ficha se arma desde el catálogo
	w := do(r, http.MethodPost, "/favorites/toggle", "s1", `{"id":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var tr toggleResponse
	_ = json.Unmarshal(w.Body.Bytes(), &tr)
	if !tr.Favorite || tr.ID != 1 {
		t.Fatalf("toggle inesperado: %+v", tr)
	}

	// ficha completa enviada por la UI
	slide := `{"id":3,"name":"Una película de Minecraft","price":"4990","src":"http://localhost:8080/assets/img/logos/NoLimits.webp","plataformas":[],"platformUrlMap":{}}`
	if w := do(r, http.MethodPost, "/favorites/toggle", "s1", slide); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/favorites", "s1", "")
	var favs []catalog.Slide
	if err := json.Unmarshal(w.Body.Bytes(), &favs); err != nil {
		t.Fatalf("json inválido: %v", err)
	}
	if len(favs) != 2 || favs[0].ID != 3 || favs[1].ID != 1 {
		t.Fatalf("orden inesperado: %+v", favs)
	}
	if favs[0].Src != "http://localhost:8080/assets/img/peliculas/minecraft/PMinecraft.webp" {
		t.Fatalf("logo guardado no re-resuelto: %s", favs[0].Src)
	}
	if favs[1].PlatformURLs["steam"] != "https://store.steampowered.com/app/1" {
		t.Fatalf("platformUrlMap perdido: %+v", favs[1].PlatformURLs)
	}

	// toggle de nuevo ⇒ se quita
	w = do(r, http.MethodPost, "/favorites/toggle", "s1", `{"id":1}`)
	_ = json.Unmarshal(w.Body.Bytes(), &tr)
	if tr.Favorite {
		t.Fatalf("el segundo toggle debe quitarlo")
	}

	if w := do(r, http.MethodGet, "/favorites/3", "s1", ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if w := do(r, http.MethodGet, "/favorites/1", "s1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("esperaba 404, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/favorites/3", "s1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/favorites/3", "s1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("quitar un favorito ausente debe ser 204, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/favorites", "s1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestBearerIsForwardedToBackend(t *testing.T) {
	repo := minecraftRepo()
	r := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/sagas/Minecraft/sections", nil)
	req.Header.Set(httpx.HeaderSession, "s1")
	req.Header.Set("Authorization", "Bearer admin-token")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if repo.lastTok != "admin-token" {
		t.Fatalf("token no reenviado: %q", repo.lastTok)
	}
}
