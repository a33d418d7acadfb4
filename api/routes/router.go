package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agritrust/agritrust-backend/api/controllers"
	"github.com/agritrust/agritrust-backend/api/middleware"
	"github.com/agritrust/agritrust-backend/internal/assistant"
	"github.com/agritrust/agritrust-backend/internal/dashboard"
	"github.com/agritrust/agritrust-backend/internal/listings"
	"github.com/agritrust/agritrust-backend/internal/notifications"
	"github.com/agritrust/agritrust-backend/internal/orders"
	"github.com/agritrust/agritrust-backend/internal/pricefeed"
	"github.com/agritrust/agritrust-backend/internal/wallet"
	"github.com/agritrust/agritrust-backend/pkg/config"
	"github.com/agritrust/agritrust-backend/pkg/enums"
	"github.com/agritrust/agritrust-backend/pkg/logger"
	"github.com/agritrust/agritrust-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Listings      listings.Service
	Orders        orders.Service
	Wallet        wallet.Service
	Notifications notifications.Service
	Dashboard     dashboard.Service
	PriceFeed     pricefeed.Service
	Assistant     assistant.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger redis.Pinger,
	redisClient *redis.Client,
	actorFinder middleware.ActorFinder,
	svcs Services,
) http.Handler {
	// Typed-nil guards: downstream middleware skips these when absent.
	var idemStore redis.IdempotencyStore
	var redisPinger redis.Pinger
	if redisClient != nil {
		idemStore = redisClient
		redisPinger = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Public marketplace surface: browsing and advisory data need no actor.
	r.Route("/api/public/v1", func(r chi.Router) {
		r.Get("/listings", controllers.BrowseListings(svcs.Listings, logg))
		r.Get("/listings/{listingId}", controllers.ListingDetail(svcs.Listings, logg))
		r.Get("/market-prices", controllers.MarketPrices(svcs.PriceFeed, logg))
		r.Get("/assistant/topics", controllers.AssistantTopics(svcs.Assistant, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActorContext(actorFinder, logg))
		r.Use(middleware.Idempotency(idemStore, cfg.Escrow.IdempotencyTTL, logg))

		r.Get("/listings", controllers.BrowseListings(svcs.Listings, logg))
		r.Get("/listings/{listingId}", controllers.ListingDetail(svcs.Listings, logg))
		r.Get("/market-prices", controllers.MarketPrices(svcs.PriceFeed, logg))
		r.Post("/assistant", controllers.AskAssistant(svcs.Assistant, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleFarmer.String(), logg))
			r.Post("/listings", controllers.CreateListing(svcs.Listings, logg))
			r.Get("/listings/mine", controllers.MyListings(svcs.Listings, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/export", controllers.ExportOrders(svcs.Dashboard, logg))
			r.With(middleware.RequireRole(enums.ActorRoleBuyer.String(), logg)).
				Post("/", controllers.PlaceOrder(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.Get("/{orderId}/timeline", controllers.OrderTimeline(svcs.Orders, logg))
			r.With(middleware.RequireRole(enums.ActorRoleFarmer.String(), logg)).
				Post("/{orderId}/deliver", controllers.MarkDelivered(svcs.Orders, logg))
			r.With(middleware.RequireRole(enums.ActorRoleBuyer.String(), logg)).
				Post("/{orderId}/confirm", controllers.ConfirmReceipt(svcs.Orders, logg))
			r.With(middleware.RequireRole(enums.ActorRoleBuyer.String(), logg)).
				Post("/{orderId}/dispute", controllers.RaiseDispute(svcs.Orders, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletBalance(svcs.Wallet, logg))
			r.Post("/deposit", controllers.WalletDeposit(svcs.Wallet, logg))
			r.Post("/withdraw", controllers.WalletWithdraw(svcs.Wallet, logg))
		})

		r.Get("/notifications", controllers.ListNotifications(svcs.Notifications, logg))
		r.Get("/dashboard/summary", controllers.DashboardSummary(svcs.Dashboard, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleAdmin.String(), logg))
			r.Post("/orders/{orderId}/force-release", controllers.AdminForceRelease(svcs.Orders, logg))
		})
	})

	return r
}
