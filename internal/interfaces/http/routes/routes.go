// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
	"github.com/your-org/storefront-gateway/internal/domain/location"
	"github.com/your-org/storefront-gateway/internal/infrastructure/commerce"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-gateway/internal/pkg/session"
	"gorm.io/gorm"
)

// SetupRoutes wires the cart and checkout API under the given group. Every
// route runs behind the session middleware so each visitor has a stable
// cart identity.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	sessions := session.NewManager(cfg)
	rg.Use(middleware.Session(cfg, sessions))

	apiClient := commerce.NewClient(cfg)
	places := location.NewCachedDirectory(apiClient, redisClient, cfg.Upstream.LocationCacheTTL)

	cartService := cart.NewService(db, redisClient, cfg)
	checkoutService := checkout.NewService(
		cartService,
		checkout.NewRedisWizardStore(redisClient, cfg.Session.TTL),
		places,
		apiClient,
		checkout.NewRedisLocker(redisClient),
		log,
	)

	setupCartRoutes(rg, cartService)
	setupCheckoutRoutes(rg, checkoutService, places, cfg)
}

func setupCartRoutes(rg *gin.RouterGroup, cartService *cart.Service) {
	cartHandler := handlers.NewCartHandler(cartService)

	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
		cartGroup.GET("/count", cartHandler.GetCount)
		cartGroup.POST("/items", cartHandler.AddItem)
		cartGroup.PUT("/items", cartHandler.UpdateItem)
		cartGroup.DELETE("/items", cartHandler.RemoveItem)
	}
}

func setupCheckoutRoutes(rg *gin.RouterGroup, checkoutService *checkout.Service, places location.Directory, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, places, cfg)

	checkoutGroup := rg.Group("/checkout")
	{
		checkoutGroup.GET("", checkoutHandler.Begin)
		checkoutGroup.GET("/provinces", checkoutHandler.GetProvinces)
		checkoutGroup.PUT("/shipping", checkoutHandler.SubmitShipping)
		checkoutGroup.PUT("/province", checkoutHandler.SelectProvince)
		checkoutGroup.PUT("/district", checkoutHandler.SelectDistrict)
		checkoutGroup.PUT("/ward", checkoutHandler.SelectWard)
		checkoutGroup.PUT("/payment", checkoutHandler.ChoosePayment)
		checkoutGroup.POST("/back", checkoutHandler.Back)
		checkoutGroup.POST("/submit", checkoutHandler.Submit)
		checkoutGroup.GET("/payment/return", checkoutHandler.PaymentReturn)
	}
}
