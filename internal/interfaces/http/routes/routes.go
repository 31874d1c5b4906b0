// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/interfaces/http/handlers"
	"github.com/your-org/wishlist-backend/internal/interfaces/http/middleware"
	"github.com/your-org/wishlist-backend/internal/realtime"
)

// SetupRoutes wires every API route. Only /auth and /wishlists/mine sit behind
// JWT middleware; the rest of the surface is authorized by the slug or secret
// in the path.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, hub *realtime.Hub, cfg *config.Config) {
	setupAuthRoutes(rg, db, cfg)
	setupWishlistRoutes(rg, db, hub, cfg)
	setupActorRoutes(rg, db, hub, cfg)
	setupProductRoutes(rg, cfg)
}

// setupAuthRoutes sets up authentication related routes
func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}
}

// setupWishlistRoutes sets up list creation, management and public viewing
func setupWishlistRoutes(rg *gin.RouterGroup, db *gorm.DB, hub *realtime.Hub, cfg *config.Config) {
	wishlistHandler := handlers.NewWishlistHandler(db, hub, cfg)
	reservationHandler := handlers.NewReservationHandler(db, hub, cfg)
	contributionHandler := handlers.NewContributionHandler(db, hub, cfg)

	wishlists := rg.Group("/wishlists")
	{
		// Creation attaches to an account when a valid token is present
		wishlists.POST("", middleware.OptionalAuthMiddleware(cfg), wishlistHandler.CreateWishlist)

		// Authenticated dashboard
		wishlists.GET("/mine", middleware.AuthMiddleware(cfg), wishlistHandler.GetMyWishlists)

		// Management surface, keyed by the creator secret
		manage := wishlists.Group("/m/:creator_secret")
		{
			manage.GET("", wishlistHandler.GetManagedWishlist)
			manage.PATCH("", wishlistHandler.UpdateWishlist)
			manage.DELETE("", wishlistHandler.DeleteWishlist)

			manage.POST("/items", wishlistHandler.AddItem)
			manage.PATCH("/items/:id", wishlistHandler.UpdateItem)
			manage.DELETE("/items/:id", wishlistHandler.DeleteItem)
		}

		// Public surface, keyed by the slug
		public := wishlists.Group("/s/:slug")
		{
			public.GET("", wishlistHandler.GetPublicWishlist)
			public.POST("/items/:id/reserve", reservationHandler.Reserve)
			public.POST("/items/:id/contribute", contributionHandler.Contribute)
		}
	}
}

// setupActorRoutes sets up the reservation and contribution management
// endpoints, keyed by the actor secrets handed out at creation
func setupActorRoutes(rg *gin.RouterGroup, db *gorm.DB, hub *realtime.Hub, cfg *config.Config) {
	reservationHandler := handlers.NewReservationHandler(db, hub, cfg)
	contributionHandler := handlers.NewContributionHandler(db, hub, cfg)

	reservations := rg.Group("/reservations")
	{
		reservations.GET("/:reserver_secret", reservationHandler.GetReservation)
		reservations.DELETE("/:reserver_secret", reservationHandler.CancelReservation)
	}

	contributions := rg.Group("/contributions")
	{
		contributions.GET("/:contributor_secret", contributionHandler.GetContribution)
		contributions.DELETE("/:contributor_secret", contributionHandler.CancelContribution)
	}
}

// setupProductRoutes sets up the product metadata fetch endpoint
func setupProductRoutes(rg *gin.RouterGroup, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(cfg)

	products := rg.Group("/products")
	{
		products.POST("/fetch", productHandler.FetchMetadata)
	}
}
