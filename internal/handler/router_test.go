package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf/bookshelf/internal/auth"
	"github.com/bookshelf/bookshelf/internal/handler/dto"
	"github.com/bookshelf/bookshelf/internal/metrics"
	"github.com/bookshelf/bookshelf/internal/middleware"
	"github.com/bookshelf/bookshelf/internal/repository/memory"
	"github.com/bookshelf/bookshelf/internal/service"
)

const testPassword = "Str0ngPass"

type testAPI struct {
	t        *testing.T
	router   http.Handler
	recorder *metrics.InMemoryRecorder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.New()
	hasher := auth.NewPasswordHasher(auth.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	codec, err := auth.NewTokenCodec(auth.TokenConfig{SecretKey: []byte("router-test-secret"), Algorithm: "HS256"})
	require.NoError(t, err)

	recorder := metrics.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sellers := service.NewSellerService(store, hasher, nil, recorder, logger)
	books := service.NewBookService(store, nil, recorder, logger)

	router := NewRouter(RouterConfig{
		Logger:   logger,
		Guard:    auth.NewGuard(codec, store),
		Metrics:  recorder,
		Security: middleware.SecurityConfig{IsDevelopment: true, MaxRequestBodySize: 1 << 20},
		CORS:     middleware.DefaultCORSConfig(),

		Root:        New(),
		Health:      NewHealthHandler(store, nil),
		MetricsView: NewMetricsHandler(recorder),
		Token:       NewTokenHandler(auth.NewAuthenticator(store, hasher), codec, 15*time.Minute, recorder, logger),
		Sellers:     NewSellerHandler(sellers, logger),
		Books:       NewBookHandler(books, logger),
	})

	return &testAPI{t: t, router: router, recorder: recorder}
}

func (a *testAPI) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	a.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) register(email string) dto.SellerResponse {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/api/v1/sellers", dto.CreateSellerRequest{
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     email,
		Password:  testPassword,
	}, "")
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var seller dto.SellerResponse
	decodeBody(a.t, rec, &seller)
	return seller
}

func (a *testAPI) login(email, password string) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.postForm("/api/v1/token", url.Values{"username": {email}, "password": {password}})
}

func (a *testAPI) token(email string) string {
	a.t.Helper()

	rec := a.login(email, testPassword)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.TokenResponse
	decodeBody(a.t, rec, &resp)
	require.Equal(a.t, "bearer", resp.TokenType)
	require.NotEmpty(a.t, resp.AccessToken)
	return resp.AccessToken
}

func (a *testAPI) createBook(token string) dto.BookResponse {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/api/v1/books", dto.BookRequest{
		Title: "Clean Code", Author: "Robert Martin", Year: 2021, Pages: 464,
	}, token)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var book dto.BookResponse
	decodeBody(a.t, rec, &book)
	return book
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body dto.ErrorResponse
	decodeBody(t, rec, &body)
	return body.Detail
}

func sellerPath(id int64) string {
	return "/api/v1/sellers/" + strconv.FormatInt(id, 10)
}

func bookPath(id int64) string {
	return "/api/v1/books/" + strconv.FormatInt(id, 10)
}

func TestRouter_LoginResolvesSameIdentity(t *testing.T) {
	api := newTestAPI(t)

	seller := api.register("ivan@example.com")
	token := api.token("ivan@example.com")

	rec := api.do(http.MethodGet, sellerPath(seller.ID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got dto.SellerWithBooksResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, seller.ID, got.ID)
	assert.Equal(t, "ivan@example.com", got.Email)
	assert.Empty(t, got.Books)

	book := api.createBook(token)
	assert.Equal(t, seller.ID, book.SellerID)

	rec = api.do(http.MethodGet, sellerPath(seller.ID), nil, token)
	decodeBody(t, rec, &got)
	require.Len(t, got.Books, 1)
	assert.Equal(t, book.ID, got.Books[0].ID)

	snap := api.recorder.Snapshot()
	assert.Equal(t, uint64(1), snap.LoginsSucceeded)
	assert.Equal(t, uint64(1), snap.SellersRegistered)
	assert.Equal(t, uint64(1), snap.BooksCreated)
}

func TestRouter_LoginKeyIgnoresCase(t *testing.T) {
	api := newTestAPI(t)

	seller := api.register("Ivan@Example.com")
	token := api.token("ivan@example.com")

	rec := api.do(http.MethodGet, sellerPath(seller.ID), nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_DuplicateRegistration(t *testing.T) {
	api := newTestAPI(t)

	first := api.register("ivan@example.com")

	for _, email := range []string{"ivan@example.com", "IVAN@example.com"} {
		rec := api.do(http.MethodPost, "/api/v1/sellers", dto.CreateSellerRequest{
			FirstName: "Other",
			LastName:  "Person",
			Email:     email,
			Password:  "An0therPass",
		}, "")
		assert.Equal(t, http.StatusConflict, rec.Code, email)
		assert.Equal(t, "Email already registered", detailOf(t, rec))
	}

	rec := api.do(http.MethodGet, "/api/v1/sellers", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list dto.SellerListResponse
	decodeBody(t, rec, &list)
	require.Len(t, list.Sellers, 1)
	assert.Equal(t, first.ID, list.Sellers[0].ID)
	assert.Equal(t, "Ivan", list.Sellers[0].FirstName)

	// The original credentials still work.
	api.token("ivan@example.com")
}

func TestRouter_DeletedSellerTokenRejected(t *testing.T) {
	api := newTestAPI(t)

	seller := api.register("ivan@example.com")
	token := api.token("ivan@example.com")
	book := api.createBook(token)

	rec := api.do(http.MethodDelete, sellerPath(seller.ID), nil, token)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, sellerPath(seller.ID), nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Could not validate credentials", detailOf(t, rec))

	rec = api.do(http.MethodGet, bookPath(book.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "books are removed with their seller")

	rec = api.login("ivan@example.com", testPassword)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	snap := api.recorder.Snapshot()
	assert.Equal(t, uint64(1), snap.SellersDeleted)
	assert.Equal(t, uint64(1), snap.AuthRejected[string(auth.CauseUnknownSubject)])
}

func TestRouter_ReassignedEmailTokenRejected(t *testing.T) {
	api := newTestAPI(t)

	first := api.register("ivan@example.com")
	oldToken := api.token("ivan@example.com")

	rec := api.do(http.MethodPut, sellerPath(first.ID), dto.UpdateSellerRequest{
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan.petrov@example.com",
	}, oldToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	second := api.register("ivan@example.com")
	require.NotEqual(t, first.ID, second.ID)

	rec = api.do(http.MethodGet, sellerPath(second.ID), nil, oldToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Could not validate credentials", detailOf(t, rec))

	rec = api.do(http.MethodDelete, sellerPath(second.ID), nil, oldToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, uint64(2), api.recorder.Snapshot().AuthRejected[string(auth.CauseStaleSubject)])

	rec = api.do(http.MethodGet, sellerPath(first.ID), nil, api.token("ivan.petrov@example.com"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_LoginFailuresAreUniform(t *testing.T) {
	api := newTestAPI(t)
	api.register("ivan@example.com")

	wrongPassword := api.login("ivan@example.com", "Wr0ngPass")
	unknownUser := api.login("nobody@example.com", testPassword)

	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownUser} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.Equal(t, "Incorrect username or password", detailOf(t, rec))
	}
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	assert.Equal(t, uint64(2), api.recorder.Snapshot().LoginsFailed)
}

func TestRouter_LoginMissingFields(t *testing.T) {
	api := newTestAPI(t)

	rec := api.postForm("/api/v1/token", url.Values{"username": {"ivan@example.com"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body dto.ErrorResponse
	decodeBody(t, rec, &body)
	assert.Contains(t, body.Errors, "password")
	assert.NotContains(t, body.Errors, "username")
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	seller := api.register("ivan@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		token  string
	}{
		{"seller detail", http.MethodGet, sellerPath(seller.ID), nil, ""},
		{"seller update", http.MethodPut, sellerPath(seller.ID), dto.UpdateSellerRequest{FirstName: "A", LastName: "B", Email: "a@b.com"}, ""},
		{"seller delete", http.MethodDelete, sellerPath(seller.ID), nil, ""},
		{"book create", http.MethodPost, "/api/v1/books", dto.BookRequest{Title: "T", Author: "A", Year: 2021, Pages: 1}, ""},
		{"garbage token", http.MethodGet, sellerPath(seller.ID), nil, "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.Equal(t, "Could not validate credentials", detailOf(t, rec))
		})
	}
}

func TestRouter_Ownership(t *testing.T) {
	api := newTestAPI(t)

	owner := api.register("owner@example.com")
	ownerToken := api.token("owner@example.com")
	api.register("other@example.com")
	otherToken := api.token("other@example.com")

	book := api.createBook(ownerToken)

	rec := api.do(http.MethodPut, bookPath(book.ID), dto.BookRequest{
		Title: "Stolen", Author: "Someone", Year: 2022, Pages: 10,
	}, otherToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodDelete, bookPath(book.ID), nil, otherToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPut, sellerPath(owner.ID), dto.UpdateSellerRequest{
		FirstName: "X", LastName: "Y", Email: "x@example.com",
	}, otherToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodDelete, sellerPath(owner.ID), nil, otherToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, bookPath(book.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.BookResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, "Clean Code", got.Title)
}

func TestRouter_BookLifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.register("ivan@example.com")
	token := api.token("ivan@example.com")

	book := api.createBook(token)

	rec := api.do(http.MethodPut, bookPath(book.ID), dto.BookRequest{
		Title: "Refactoring", Author: "Martin Fowler", Year: 2023, Pages: 448,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated dto.BookResponse
	decodeBody(t, rec, &updated)
	assert.Equal(t, book.ID, updated.ID)
	assert.Equal(t, "Refactoring", updated.Title)
	assert.Equal(t, 448, updated.Pages)

	rec = api.do(http.MethodGet, "/api/v1/books", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.BookListResponse
	decodeBody(t, rec, &list)
	require.Len(t, list.Books, 1)

	rec = api.do(http.MethodDelete, bookPath(book.ID), nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodGet, bookPath(book.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", detailOf(t, rec))
}

func TestRouter_ValidationErrors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/v1/sellers", dto.CreateSellerRequest{
		FirstName: "",
		LastName:  "Petrov",
		Email:     "not-an-email",
		Password:  "tiny7",
	}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body dto.ErrorResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "Validation failed", body.Detail)
	assert.Contains(t, body.Errors, "first_name")
	assert.Contains(t, body.Errors, "e_mail")
	assert.Contains(t, body.Errors, "password")
	assert.NotContains(t, rec.Body.String(), "tiny7", "the password must not be echoed")

	api.register("ivan@example.com")
	token := api.token("ivan@example.com")

	rec = api.do(http.MethodPost, "/api/v1/books", dto.BookRequest{
		Title: "Old", Author: "Author", Year: 1999, Pages: 0,
	}, token)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body = dto.ErrorResponse{}
	decodeBody(t, rec, &body)
	assert.Contains(t, body.Errors, "year")
	assert.Contains(t, body.Errors, "count_pages")
}

func TestRouter_MalformedRequests(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sellers", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid request body", detailOf(t, rec))

	rec = api.do(http.MethodGet, "/api/v1/books/abc", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/books/999", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", detailOf(t, rec))

	rec = api.do(http.MethodPatch, "/api/v1/books", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_TrailingSlash(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/books/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_Metrics(t *testing.T) {
	api := newTestAPI(t)
	api.register("ivan@example.com")
	api.login("ivan@example.com", "Wr0ngPass")
	api.do(http.MethodGet, "/api/v1/sellers/1", nil, "")

	rec := api.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := rec.Body.String()
	assert.Contains(t, out, "bookshelf_logins_total{status=\"failed\"} 1\n")
	assert.Contains(t, out, "bookshelf_auth_rejected_total{cause=\"missing_token\"} 1\n")
	assert.Contains(t, out, "bookshelf_sellers_registered_total 1\n")
}
