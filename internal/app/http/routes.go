package routes

import (
	"net/http"

	adminapi "arvista/internal/api/admin"
	artworksapi "arvista/internal/api/artworks"
	authapi "arvista/internal/api/auth"
	cartapi "arvista/internal/api/cart"
	contactapi "arvista/internal/api/contact"
	favoritesapi "arvista/internal/api/favorites"
	newsletterapi "arvista/internal/api/newsletter"
	ordersapi "arvista/internal/api/orders"
	reviewsapi "arvista/internal/api/reviews"
	stripewebhooks "arvista/internal/api/stripewebhook"
	taxonomyapi "arvista/internal/api/taxonomy"
	uploadsapi "arvista/internal/api/uploads"
	usersapi "arvista/internal/api/users"
	"arvista/internal/app/http/middleware"
	"arvista/internal/domain/users"
	"arvista/internal/infra/metrics"
	"arvista/internal/infra/storage"

	"github.com/gin-gonic/gin"
)

// Limiters are shared with the cleanup job.
type Limiters struct {
	Auth  *middleware.RateLimiter
	Forms *middleware.RateLimiter
}

func DefaultLimiters() Limiters {
	return Limiters{
		Auth:  middleware.NewRateLimiter(20, 10),
		Forms: middleware.NewRateLimiter(6, 3),
	}
}

func RegisterRoutes(r *gin.Engine, lim Limiters) {
	// Raw body is needed for the signature check, so no sanitizer here.
	r.POST("/webhook/stripe", stripewebhooks.StripeWebhook)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	if local, ok := storage.Default.(*storage.LocalDisk); ok {
		r.Static("/storage", local.Root())
	}

	api := r.Group("/api")
	api.Use(middleware.SanitizeAndCleanInputMiddleware())

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Use(lim.Auth.Handler())
	authGroup.POST("/register", authapi.Register)
	authGroup.POST("/login", authapi.Login)
	authGroup.POST("/request-password-reset", authapi.RequestPasswordReset)
	authGroup.POST("/reset-password", authapi.ResetPassword)
	authGroup.GET("/google", authapi.GoogleStart)
	authGroup.GET("/google/callback", authapi.GoogleCallback)
	authGroup.POST("/change-password", middleware.AuthMiddleware(), authapi.ChangePassword)

	// Public catalog; a token, when present, unlocks drafts for owners and admins.
	catalog := api.Group("/")
	catalog.Use(middleware.OptionalAuth())
	catalog.GET("/artworks", artworksapi.ListArtworks)
	catalog.GET("/artworks/:id", artworksapi.GetArtwork)
	catalog.GET("/artworks/:id/reviews", reviewsapi.ListReviews)
	catalog.GET("/categories", taxonomyapi.ListCategories)
	catalog.GET("/categories/:slug", taxonomyapi.GetCategory)
	catalog.GET("/collections", taxonomyapi.ListCollections)
	catalog.GET("/collections/:slug", taxonomyapi.GetCollection)
	catalog.GET("/tags", taxonomyapi.ListTags)
	catalog.GET("/tags/:slug", taxonomyapi.GetTag)

	// Forms
	forms := api.Group("/")
	forms.Use(lim.Forms.Handler())
	forms.POST("/contact", contactapi.Submit)
	forms.POST("/newsletter", newsletterapi.Subscribe)
	api.GET("/newsletter/unsubscribe", newsletterapi.Unsubscribe)

	// Authenticated
	auth := api.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", usersapi.GetCurrentUser)
	auth.PUT("/me", usersapi.UpdateCurrentUser)

	auth.GET("/cart", cartapi.GetCart)
	auth.POST("/cart/add", cartapi.AddToCart)
	auth.PUT("/cart/items/:artworkId", cartapi.UpdateCartItem)
	auth.DELETE("/cart/items/:artworkId", cartapi.RemoveCartItem)
	auth.DELETE("/cart", cartapi.ClearCart)

	auth.POST("/orders", ordersapi.CreateOrder)
	auth.GET("/orders", ordersapi.ListOrders)
	auth.GET("/orders/:id", ordersapi.GetOrder)
	auth.POST("/orders/:id/cancel", ordersapi.CancelOrder)
	auth.POST("/orders/:id/checkout", ordersapi.CheckoutOrder)

	auth.GET("/favorites", favoritesapi.ListFavorites)
	auth.POST("/favorites", favoritesapi.AddFavorite)
	auth.DELETE("/favorites/:artworkId", favoritesapi.RemoveFavorite)

	auth.POST("/artworks/:id/reviews", reviewsapi.CreateReview)
	auth.PUT("/reviews/:id", reviewsapi.UpdateReview)
	auth.DELETE("/reviews/:id", reviewsapi.DeleteReview)

	// Artists and admins
	studio := auth.Group("/")
	studio.Use(middleware.RequireRole(users.RoleArtist, users.RoleAdmin))
	studio.POST("/artworks", artworksapi.CreateArtwork)
	studio.PUT("/artworks/:id", artworksapi.UpdateArtwork)
	studio.DELETE("/artworks/:id", artworksapi.DeleteArtwork)
	studio.POST("/images", uploadsapi.UploadImage)

	// Taxonomy writes
	staff := auth.Group("/")
	staff.Use(middleware.RequireRole(users.RoleAdmin))
	staff.POST("/categories", taxonomyapi.CreateCategory)
	staff.PUT("/categories/:id", taxonomyapi.UpdateCategory)
	staff.DELETE("/categories/:id", taxonomyapi.DeleteCategory)
	staff.POST("/collections", taxonomyapi.CreateCollection)
	staff.PUT("/collections/:id", taxonomyapi.UpdateCollection)
	staff.DELETE("/collections/:id", taxonomyapi.DeleteCollection)
	staff.POST("/tags", taxonomyapi.CreateTag)
	staff.PUT("/tags/:id", taxonomyapi.UpdateTag)
	staff.DELETE("/tags/:id", taxonomyapi.DeleteTag)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(users.RoleAdmin))
	admin.GET("/stats", adminapi.GetAdminStats)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/users/:id", adminapi.GetUserDetails)
	admin.PATCH("/users/:id/role", adminapi.UpdateUserRole)
	admin.GET("/orders", adminapi.ListOrders)
	admin.PATCH("/orders/:id/status", adminapi.UpdateOrderStatus)
	admin.GET("/payments", adminapi.ListAllPayments)
	admin.GET("/contact", adminapi.ListContactMessages)
	admin.PATCH("/contact/:id", adminapi.UpdateContactMessage)
	admin.DELETE("/contact/:id", adminapi.DeleteContactMessage)
	admin.GET("/newsletter", adminapi.ListSubscribers)
	admin.POST("/images", uploadsapi.UploadImage)
}
