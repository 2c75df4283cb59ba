package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"bulkwala/internal/auth"
	"bulkwala/internal/config"
	"bulkwala/internal/degrade"
	"bulkwala/internal/domain/categories"
	"bulkwala/internal/domain/offers"
	"bulkwala/internal/domain/products"
	"bulkwala/internal/domain/storage"
	"bulkwala/internal/domain/subcategories"
	"bulkwala/internal/domain/users"
	"bulkwala/internal/imagehost"
	"bulkwala/internal/mailer"
	"bulkwala/internal/payments"
	"bulkwala/internal/ratelimiter"
	"bulkwala/internal/slug"
	"bulkwala/internal/sms"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errDown = errors.New("connection refused")

type fakeCategories struct {
	items []categories.Category
	err   error
}

func (f *fakeCategories) List(context.Context) ([]categories.Category, error) {
	return f.items, f.err
}

func (f *fakeCategories) GetBySlug(_ context.Context, slug string) (*categories.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].Slug == slug {
			return &f.items[i], nil
		}
	}
	return nil, categories.ErrCategoryNotFound
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*categories.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, categories.ErrCategoryNotFound
}

func (f *fakeCategories) SlugExists(_ context.Context, slug string) (bool, error) {
	_, err := f.GetBySlug(context.Background(), slug)
	return err == nil, nil
}

func (f *fakeCategories) Create(_ context.Context, c *categories.Category) error {
	if f.err != nil {
		return f.err
	}
	c.ID = "cat-" + c.Slug
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCategories) Update(ctx context.Context, slug string, p categories.Patch) (*categories.Category, error) {
	c, err := f.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.Apply(p)
	return c, nil
}

func (f *fakeCategories) SoftDelete(ctx context.Context, slug, _ string) error {
	if _, err := f.GetBySlug(ctx, slug); err != nil {
		return err
	}
	f.items = slices.DeleteFunc(f.items, func(c categories.Category) bool { return c.Slug == slug })
	return nil
}

type fakeSubcategories struct {
	items []subcategories.Subcategory
	err   error
}

func (f *fakeSubcategories) List(context.Context, string) ([]subcategories.Subcategory, error) {
	return f.items, f.err
}

func (f *fakeSubcategories) GetBySlug(_ context.Context, slug string) (*subcategories.Subcategory, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].Slug == slug && !f.items[i].IsDeleted {
			return &f.items[i], nil
		}
	}
	return nil, subcategories.ErrSubcategoryNotFound
}

func (f *fakeSubcategories) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := f.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (f *fakeSubcategories) Create(_ context.Context, s *subcategories.Subcategory) error {
	f.items = append(f.items, *s)
	return f.err
}

func (f *fakeSubcategories) Update(ctx context.Context, slug string, p subcategories.Patch) (*subcategories.Subcategory, error) {
	s, err := f.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.Apply(p)
	return s, nil
}

func (f *fakeSubcategories) SoftDelete(ctx context.Context, slug, by string) error {
	s, err := f.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	s.IsDeleted = true
	s.DeletedBy = &by
	return nil
}

func (f *fakeSubcategories) Restore(_ context.Context, slug string) (*subcategories.Subcategory, error) {
	for i := range f.items {
		if f.items[i].Slug == slug && f.items[i].IsDeleted {
			f.items[i].IsDeleted = false
			f.items[i].DeletedBy = nil
			return &f.items[i], nil
		}
	}
	return nil, subcategories.ErrNotDeleted
}

type fakeProducts struct {
	items []products.Product
	err   error
}

func (f *fakeProducts) List(_ context.Context, filter products.Filter) (products.Page, error) {
	if f.err != nil {
		return products.Page{}, f.err
	}
	return filter.Apply(f.items), nil
}

func (f *fakeProducts) GetBySlug(_ context.Context, slug string) (*products.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].Slug == slug {
			return &f.items[i], nil
		}
	}
	return nil, products.ErrProductNotFound
}

func (f *fakeProducts) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := f.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (f *fakeProducts) Create(_ context.Context, p *products.Product) error {
	if f.err != nil {
		return f.err
	}
	p.ID = "prod-" + p.Slug
	f.items = append(f.items, *p)
	return nil
}

func (f *fakeProducts) Update(ctx context.Context, slug string, patch products.Patch) (*products.Product, error) {
	p, err := f.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	next := *p
	if err := next.Apply(patch); err != nil {
		return nil, err
	}
	*p = next
	return p, nil
}

func (f *fakeProducts) Delete(ctx context.Context, slug string) error {
	if _, err := f.GetBySlug(ctx, slug); err != nil {
		return err
	}
	f.items = slices.DeleteFunc(f.items, func(p products.Product) bool { return p.Slug == slug })
	return nil
}

type fakeOffers struct {
	row *offers.Offer
	err error
}

func (f *fakeOffers) Get(context.Context) (*offers.Offer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.row == nil {
		return nil, offers.ErrNoOffer
	}
	o := *f.row
	return &o, nil
}

func (f *fakeOffers) Upsert(_ context.Context, o *offers.Offer) error {
	if f.err != nil {
		return f.err
	}
	row := *o
	f.row = &row
	return nil
}

func (f *fakeOffers) Deactivate(context.Context) error {
	if f.row != nil {
		f.row.IsActive = false
	}
	return f.err
}

func (f *fakeOffers) DeleteAll(context.Context) error {
	f.row = nil
	return f.err
}

type fakeUsers struct {
	byEmail map[string]*users.User
	err     error
}

func (f *fakeUsers) Create(_ context.Context, u *users.User, _ string, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return users.ErrDuplicateEmail
	}
	u.ID = "user-" + u.Email
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*users.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, users.ErrUserNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, users.ErrUserNotFound
}

func (f *fakeUsers) Verify(context.Context, string) error { return f.err }

func (f *fakeUsers) SetResetToken(context.Context, string, string, time.Time) error { return f.err }

func (f *fakeUsers) ResetPassword(context.Context, string, []byte) error { return f.err }

func (f *fakeUsers) DeleteByEmail(_ context.Context, email string) (int64, error) {
	delete(f.byEmail, email)
	return 1, nil
}

type fakeUploader struct {
	uploaded  []string
	destroyed []string
	err       error
}

func (f *fakeUploader) Upload(_ context.Context, _ io.Reader, folder, publicID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	url := "https://res.cloudinary.com/test/" + folder + "/" + publicID + ".png"
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeUploader) Destroy(_ context.Context, imageURL string) error {
	f.destroyed = append(f.destroyed, imageURL)
	return f.err
}

type testStores struct {
	categories    *fakeCategories
	subcategories *fakeSubcategories
	products      *fakeProducts
	offers        *fakeOffers
	users         *fakeUsers
}

func newTestStores() *testStores {
	electronics := categories.Category{ID: "cat-1", Name: "Electronics", Slug: "electronics"}
	return &testStores{
		categories:    &fakeCategories{items: []categories.Category{electronics}},
		subcategories: &fakeSubcategories{items: []subcategories.Subcategory{{ID: "sub-1", Name: "Laptops", Slug: "laptops", Category: electronics.Ref()}}},
		products:      &fakeProducts{},
		offers:        &fakeOffers{},
		users:         &fakeUsers{byEmail: map[string]*users.User{}},
	}
}

func newTestApplication(t *testing.T, caps degrade.Capabilities, stores *testStores) *application {
	t.Helper()

	logger := zap.NewNop().Sugar()
	exec := degrade.New(caps, logger)

	if stores == nil {
		stores = newTestStores()
	}
	container := &storage.Container{
		Users:         stores.users,
		Categories:    stores.categories,
		Subcategories: stores.subcategories,
		Products:      stores.products,
		Offers:        stores.offers,
	}

	cfg := &config.Config{
		Addr:        ":8080",
		Env:         "test",
		Version:     "test",
		FrontendURL: "http://localhost:5173",
		Auth: config.AuthConfig{
			Secret:          "access",
			RefreshSecret:   "refresh",
			Issuer:          "bulkwala",
			AccessTokenExp:  time.Hour,
			RefreshTokenExp: 2 * time.Hour,
		},
	}

	manager := payments.NewPaymentManager()
	manager.RegisterGateway(payments.MethodRazorpay, payments.NewRazorpayAdapter("", ""))
	manager.RegisterGateway(payments.MethodCOD, payments.CODAdapter{})

	slugs, err := slug.NewGenerator("test")
	require.NoError(t, err)

	return &application{
		config:        cfg,
		store:         container,
		exec:          exec,
		logger:        logger,
		images:        imagehost.NewService(nil, exec, "test"),
		mail:          mailer.NewService(nil, exec, logger, cfg.PrimaryFrontendURL()),
		sms:           sms.NewService(nil, exec, "+91"),
		payments:      payments.NewService(manager, exec),
		offers:        offers.NewService(stores.offers, exec),
		slugs:         slugs,
		authenticator: auth.NewJWTAuthenticator(cfg.Auth.Secret, cfg.Auth.RefreshSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenExp, cfg.Auth.RefreshTokenExp),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(100, time.Second),
	}
}

func withDB() degrade.Capabilities {
	return degrade.Capabilities{degrade.Database: true}
}

func bearer(t *testing.T, app *application, role string) string {
	t.Helper()
	access, _, err := app.authenticator.GenerateTokens("user-1", role)
	require.NoError(t, err)
	return "Bearer " + access
}

type response struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func do(t *testing.T, app *application, method, target, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, response) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rr := httptest.NewRecorder()
	app.mount().ServeHTTP(rr, req)

	var env response
	require.NoError(t, json.NewDecoder(strings.NewReader(rr.Body.String())).Decode(&env), rr.Body.String())
	return rr, env
}

func doJSON(t *testing.T, app *application, method, target, token, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return do(t, app, method, target, token, r, "application/json")
}

func checkResponseCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected response code %d, got %d", expected, actual)
	}
}

type fixedLimiter struct{ allow bool }

func (l fixedLimiter) Allow(string) (bool, time.Duration) { return l.allow, time.Second }
