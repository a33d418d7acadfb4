package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agritrust/agritrust-backend/internal/assistant"
	"github.com/agritrust/agritrust-backend/internal/dashboard"
	"github.com/agritrust/agritrust-backend/internal/listings"
	"github.com/agritrust/agritrust-backend/internal/orders"
	"github.com/agritrust/agritrust-backend/internal/pricefeed"
	"github.com/agritrust/agritrust-backend/pkg/config"
	"github.com/agritrust/agritrust-backend/pkg/db/models"
	"github.com/agritrust/agritrust-backend/pkg/enums"
	"github.com/agritrust/agritrust-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubFinder struct {
	actors map[uuid.UUID]*models.Actor
}

func (f *stubFinder) Find(_ context.Context, id uuid.UUID) (*models.Actor, error) {
	if actor, ok := f.actors[id]; ok {
		return actor, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubListingService struct{}

func (stubListingService) Create(context.Context, listings.CreateInput) (*models.Listing, error) {
	return &models.Listing{}, nil
}

func (stubListingService) Get(context.Context, uuid.UUID) (*models.Listing, error) {
	return &models.Listing{}, nil
}

func (stubListingService) Browse(context.Context, listings.BrowseInput) (*listings.Page, error) {
	return &listings.Page{}, nil
}

func (stubListingService) Mine(context.Context, uuid.UUID) ([]models.Listing, error) {
	return nil, nil
}

type stubOrderService struct {
	forceReleased int
}

func (s *stubOrderService) Place(context.Context, orders.PlaceInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s *stubOrderService) MarkDelivered(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s *stubOrderService) ConfirmReceipt(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s *stubOrderService) RaiseDispute(context.Context, orders.DisputeInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s *stubOrderService) ForceRelease(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	s.forceReleased++
	return &models.Order{Status: enums.OrderStatusReleased, AdminReleased: true}, nil
}

func (s *stubOrderService) Get(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s *stubOrderService) ListForActor(context.Context, uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderService) Timeline(context.Context, uuid.UUID, uuid.UUID) ([]models.EscrowEvent, error) {
	return nil, nil
}

type stubWalletService struct{}

func (stubWalletService) Balance(context.Context, uuid.UUID) (*models.Actor, error) {
	return &models.Actor{}, nil
}

func (stubWalletService) Deposit(context.Context, uuid.UUID, int64) (*models.Actor, error) {
	return &models.Actor{}, nil
}

func (stubWalletService) Withdraw(context.Context, uuid.UUID, int64) (*models.Actor, error) {
	return &models.Actor{}, nil
}

func (stubWalletService) Credit(context.Context, *gorm.DB, uuid.UUID, int64) error {
	return nil
}

func (stubWalletService) Debit(context.Context, *gorm.DB, uuid.UUID, int64) error {
	return nil
}

type stubNotificationService struct{}

func (stubNotificationService) Append(context.Context, *gorm.DB, uuid.UUID, string) error {
	return nil
}

func (stubNotificationService) Recent(context.Context, uuid.UUID, int) ([]models.Notification, error) {
	return nil, nil
}

func (stubNotificationService) Count(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

type stubDashboardService struct{}

func (stubDashboardService) Summarize(context.Context, uuid.UUID) (*dashboard.Summary, error) {
	return &dashboard.Summary{}, nil
}

func (stubDashboardService) ExportOrders(_ context.Context, _ uuid.UUID, w io.Writer) error {
	_, err := w.Write([]byte("order_number\n"))
	return err
}

type stubPriceService struct{}

func (stubPriceService) Quotes(context.Context, string) (*pricefeed.Quotes, error) {
	return &pricefeed.Quotes{Source: "fallback"}, nil
}

type stubAssistantService struct{}

func (stubAssistantService) Ask(context.Context, string) (*assistant.Answer, error) {
	return &assistant.Answer{}, nil
}

func (stubAssistantService) Topics(context.Context) []string {
	return []string{"buy"}
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(finder *stubFinder, orderSvc *stubOrderService) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(testConfig(), logg, stubPinger{}, nil, finder, Services{
		Listings:      stubListingService{},
		Orders:        orderSvc,
		Wallet:        stubWalletService{},
		Notifications: stubNotificationService{},
		Dashboard:     stubDashboardService{},
		PriceFeed:     stubPriceService{},
		Assistant:     stubAssistantService{},
	})
}

func seedActors() (*stubFinder, *models.Actor, *models.Actor, *models.Actor) {
	farmer := &models.Actor{ID: uuid.New(), Name: "SellerA", Role: enums.ActorRoleFarmer}
	buyer := &models.Actor{ID: uuid.New(), Name: "BuyerB", Role: enums.ActorRoleBuyer}
	admin := &models.Actor{ID: uuid.New(), Name: "Admin", Role: enums.ActorRoleAdmin}
	finder := &stubFinder{actors: map[uuid.UUID]*models.Actor{
		farmer.ID: farmer,
		buyer.ID:  buyer,
		admin.ID:  admin,
	}}
	return finder, farmer, buyer, admin
}

func TestHealthEndpoints(t *testing.T) {
	finder, _, _, _ := seedActors()
	router := newTestRouter(finder, &stubOrderService{})

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestPublicBrowseNeedsNoActor(t *testing.T) {
	finder, _, _, _ := seedActors()
	router := newTestRouter(finder, &stubOrderService{})

	for _, path := range []string{
		"/api/public/v1/listings",
		"/api/public/v1/market-prices",
		"/api/public/v1/assistant/topics",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 without actor header got %d", path, resp.Code)
		}
	}
}

func TestAuthenticatedRoutesRequireActorHeader(t *testing.T) {
	finder, _, _, _ := seedActors()
	router := newTestRouter(finder, &stubOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without actor header got %d", resp.Code)
	}

	unknown := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	unknown.Header.Set("X-Actor-Id", uuid.NewString())
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, unknown)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown actor got %d", resp.Code)
	}
}

func TestCreateListingRequiresFarmerRole(t *testing.T) {
	finder, farmer, buyer, _ := seedActors()
	router := newTestRouter(finder, &stubOrderService{})
	body := `{"crop":"Wheat","market":"Kurnool","quantity_kg":100,"price_units":22}`

	asBuyer := httptest.NewRequest(http.MethodPost, "/api/v1/listings", strings.NewReader(body))
	asBuyer.Header.Set("X-Actor-Id", buyer.ID.String())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asBuyer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer creating listing got %d", resp.Code)
	}

	asFarmer := httptest.NewRequest(http.MethodPost, "/api/v1/listings", strings.NewReader(body))
	asFarmer.Header.Set("X-Actor-Id", farmer.ID.String())
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asFarmer)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for farmer creating listing got %d", resp.Code)
	}
}

func TestForceReleaseRequiresAdminRole(t *testing.T) {
	finder, _, buyer, admin := seedActors()
	orderSvc := &stubOrderService{}
	router := newTestRouter(finder, orderSvc)
	path := "/api/v1/admin/orders/" + uuid.NewString() + "/force-release"

	req := httptest.NewRequest(http.MethodPost, path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without actor header got %d", resp.Code)
	}

	asBuyer := httptest.NewRequest(http.MethodPost, path, nil)
	asBuyer.Header.Set("X-Actor-Id", buyer.ID.String())
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asBuyer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer on admin route got %d", resp.Code)
	}
	if orderSvc.forceReleased != 0 {
		t.Fatal("service must not be reached by non-admin callers")
	}

	asAdmin := httptest.NewRequest(http.MethodPost, path, nil)
	asAdmin.Header.Set("X-Actor-Id", admin.ID.String())
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asAdmin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin force release got %d", resp.Code)
	}
	if orderSvc.forceReleased != 1 {
		t.Fatalf("expected one force release call, got %d", orderSvc.forceReleased)
	}
}

func TestPlaceOrderRequiresBuyerRole(t *testing.T) {
	finder, farmer, _, _ := seedActors()
	router := newTestRouter(finder, &stubOrderService{})
	body := `{"listing_id":"` + uuid.NewString() + `","quantity_kg":100}`

	asFarmer := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	asFarmer.Header.Set("X-Actor-Id", farmer.ID.String())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asFarmer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for farmer placing order got %d", resp.Code)
	}
}
