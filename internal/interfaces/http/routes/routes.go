// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/domain/analytics"
	"github.com/pawverse/petstore-backend/internal/domain/booking"
	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/pawverse/petstore-backend/internal/domain/checkout"
	"github.com/pawverse/petstore-backend/internal/domain/notify"
	"github.com/pawverse/petstore-backend/internal/domain/order"
	"github.com/pawverse/petstore-backend/internal/domain/review"
	"github.com/pawverse/petstore-backend/internal/domain/user"
	"github.com/pawverse/petstore-backend/internal/domain/wishlist"
	"github.com/pawverse/petstore-backend/internal/interfaces/http/handlers"
	"github.com/pawverse/petstore-backend/internal/interfaces/http/middleware"
	"github.com/pawverse/petstore-backend/internal/pkg/auth"
	"github.com/pawverse/petstore-backend/internal/pkg/email"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services bundles the domain services the HTTP layer talks to
type Services struct {
	Catalog    *catalog.Service
	Cart       *cart.Service
	Wishlist   *wishlist.Service
	Checkout   *checkout.Service
	Order      *order.Service
	Booking    *booking.BookingService
	User       *user.Service
	Review     *review.Service
	Analytics  *analytics.Service
	Dispatcher *notify.Dispatcher
	JWT        *auth.JWTManager
	Logger     *logrus.Logger
}

// NewServices wires every domain service over one database handle.
// redisClient may be nil, in which case notifications skip the event list.
func NewServices(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *Services {
	mailer := email.NewEmailService(cfg, logger)
	dispatcher := notify.NewDispatcher(redisClient, mailer, logger)
	cartService := cart.NewService(db, logger)

	return &Services{
		Catalog:    catalog.NewService(db, cfg),
		Cart:       cartService,
		Wishlist:   wishlist.NewService(db, cartService),
		Checkout:   checkout.NewService(db, cfg, cartService, dispatcher, logger),
		Order:      order.NewService(db, cfg, dispatcher, logger),
		Booking:    booking.NewBookingService(db, dispatcher, logger),
		User:       user.NewService(db, cfg),
		Review:     review.NewService(db, logger),
		Analytics:  analytics.NewService(db),
		Dispatcher: dispatcher,
		JWT:        auth.NewJWTManager(cfg),
		Logger:     logger,
	}
}

// SetupRoutes registers every API route on rg
func SetupRoutes(rg *gin.RouterGroup, cfg *config.Config, svc *Services) {
	rg.Use(middleware.Session(cfg))
	rg.Use(middleware.OptionalAuthMiddleware(svc.JWT))

	SetupAuthRoutes(rg, svc)
	SetupCatalogRoutes(rg, svc)
	SetupCartRoutes(rg, svc)
	SetupCheckoutRoutes(rg, svc)
	SetupBookingRoutes(rg, svc)
	SetupReviewRoutes(rg, svc)
	SetupAdminRoutes(rg, svc)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, svc *Services) {
	authHandler := handlers.NewAuthHandler(svc.User, svc.Cart, svc.Logger)

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.RefreshToken)
		authGroup.GET("/profile", middleware.AuthMiddleware(svc.JWT), authHandler.GetProfile)
	}
}

// SetupCatalogRoutes sets up public catalog browsing routes
func SetupCatalogRoutes(rg *gin.RouterGroup, svc *Services) {
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog, svc.Cart, svc.Wishlist)

	rg.GET("/pets", catalogHandler.GetPets)
	rg.GET("/pets/:id", catalogHandler.GetPet)
	rg.GET("/products", catalogHandler.GetProducts)
	rg.GET("/products/:id", catalogHandler.GetProduct)
	rg.GET("/categories", catalogHandler.GetCategories)
	rg.GET("/stores", catalogHandler.GetStores)
	rg.GET("/stores/:id", catalogHandler.GetStore)
}

// SetupCartRoutes sets up cart and wishlist routes. Cart routes work for
// guests through the session cookie.
func SetupCartRoutes(rg *gin.RouterGroup, svc *Services) {
	cartHandler := handlers.NewCartHandler(svc.Cart)
	wishlistHandler := handlers.NewWishlistHandler(svc.Wishlist)
	requireAuth := middleware.AuthMiddleware(svc.JWT)

	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.GET("/count", cartHandler.GetCartCount)
		cartGroup.POST("/add", cartHandler.AddToCart)
		cartGroup.POST("/remove/:item_id", cartHandler.RemoveFromCart)
		cartGroup.POST("/delete/:item_id", cartHandler.DeleteFromCart)
		cartGroup.POST("/merge", requireAuth, cartHandler.MergeCart)
	}

	wishlistGroup := rg.Group("/wishlist")
	{
		wishlistGroup.GET("/count", wishlistHandler.GetCount)
		wishlistGroup.GET("", requireAuth, wishlistHandler.GetWishlist)
		wishlistGroup.POST("/toggle", requireAuth, wishlistHandler.Toggle)
		wishlistGroup.POST("/:id/move-to-cart", requireAuth, wishlistHandler.MoveToCart)
	}
}

// SetupCheckoutRoutes sets up checkout and order routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, svc *Services) {
	checkoutHandler := handlers.NewCheckoutHandler(svc.Checkout)
	orderHandler := handlers.NewOrderHandler(svc.Order)

	checkoutGroup := rg.Group("/checkout")
	{
		checkoutGroup.GET("", checkoutHandler.Preview)
		checkoutGroup.POST("/process-order", checkoutHandler.ProcessOrder)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("", middleware.AuthMiddleware(svc.JWT), orderHandler.GetUserOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/receipt", orderHandler.DownloadReceipt)
		orders.POST("/:id/confirm-upi", orderHandler.ConfirmUPIPayment)
	}
}

// SetupBookingRoutes sets up pet care service routes
func SetupBookingRoutes(rg *gin.RouterGroup, svc *Services) {
	bookingHandler := handlers.NewBookingHandler(svc.Booking)

	rg.GET("/services", bookingHandler.GetServices)
	rg.GET("/services/:slug", bookingHandler.GetService)
	rg.GET("/service-centers", bookingHandler.GetCenters)

	bookings := rg.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(svc.JWT))
	{
		bookings.GET("", bookingHandler.GetUserBookings)
		bookings.POST("", bookingHandler.CreateBooking)
	}
}

// SetupReviewRoutes sets up pet review routes. New reviews stay hidden
// until an admin approves them.
func SetupReviewRoutes(rg *gin.RouterGroup, svc *Services) {
	reviewHandler := handlers.NewReviewHandler(svc.Review)
	requireAuth := middleware.AuthMiddleware(svc.JWT)

	rg.GET("/pets/:id/reviews", reviewHandler.GetPetReviews)
	rg.POST("/pets/:id/reviews", requireAuth, reviewHandler.CreateReview)
	rg.DELETE("/reviews/:id", requireAuth, reviewHandler.DeleteReview)
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, svc *Services) {
	adminOrderHandler := handlers.NewAdminOrderHandler(svc.Order)
	bookingHandler := handlers.NewBookingHandler(svc.Booking)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog, svc.Cart, svc.Wishlist)
	reviewHandler := handlers.NewReviewHandler(svc.Review)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(svc.JWT))
	admin.Use(middleware.AdminMiddleware())
	{
		orders := admin.Group("/orders")
		{
			orders.GET("", adminOrderHandler.GetOrders)
			orders.GET("/export", adminOrderHandler.ExportOrders)
			orders.PUT("/:id/payment-failed", adminOrderHandler.MarkPaymentFailed)
		}

		admin.PUT("/bookings/:id/status", bookingHandler.UpdateStatus)
		admin.POST("/services", bookingHandler.CreateService)
		admin.POST("/categories", catalogHandler.CreateCategory)

		admin.GET("/reviews/pending", reviewHandler.GetPendingReviews)
		admin.PUT("/reviews/:id/moderate", reviewHandler.ModerateReview)

		admin.GET("/analytics/dashboard", analyticsHandler.GetDashboard)
		admin.GET("/analytics/sales", analyticsHandler.GetSales)
	}
}
