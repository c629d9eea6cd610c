package router

import (
	"rateMyStore/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupAuthRoutes(api *echo.Group, handler *rest.AuthHandler, authRequired echo.MiddlewareFunc) {
	auth := api.Group("/auth")

	auth.POST("/signup", handler.Signup)
	auth.POST("/login", handler.Login)
	auth.GET("/email-verification/:code", handler.VerifyEmail)

	auth.POST("/logout", handler.Logout, authRequired)
	auth.GET("/profile", handler.Profile, authRequired)
	auth.PUT("/password", handler.UpdatePassword, authRequired)
}

func SetupStoreRoutes(api *echo.Group, handler *rest.StoreHandler, authRequired echo.MiddlewareFunc) {
	stores := api.Group("/stores", authRequired)

	stores.GET("", handler.List)
	stores.GET("/:storeId", handler.GetByID)
	stores.GET("/:storeId/ratings", handler.ListRatings)
	stores.POST("/:storeId/ratings", handler.SubmitRating)
	stores.PUT("/:storeId/ratings", handler.UpdateRating)
	stores.DELETE("/:storeId/ratings", handler.DeleteRating)
}

func SetupStoreOwnerRoutes(api *echo.Group, handler *rest.StoreOwnerHandler, authRequired, ownerOnly echo.MiddlewareFunc) {
	owner := api.Group("/store-owner", authRequired, ownerOnly)

	owner.GET("/store", handler.GetStore)
	owner.PUT("/store", handler.UpdateStore)
	owner.GET("/ratings", handler.GetRatings)
	owner.GET("/store-with-ratings", handler.GetStoreWithRatings)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.AdminHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin", authRequired, adminOnly)

	admin.POST("/users/normal", handler.CreateNormalUser)
	admin.POST("/users/admin", handler.CreateAdminUser)
	admin.POST("/users/store-owner", handler.CreateStoreOwner)
	admin.GET("/users", handler.ListUsers)
	admin.GET("/users/store-owners", handler.ListStoreOwners)
	admin.GET("/users/:userId", handler.GetUserDetails)
	admin.PATCH("/users/:userId/role", handler.UpdateUserRole)
	admin.DELETE("/users/:userId", handler.DeleteUser)

	admin.POST("/create-stores", handler.CreateStore)
	admin.GET("/stores", handler.ListStores)
	admin.GET("/stores/:id", handler.GetStoreByID)

	admin.GET("/stats", handler.GetStats)
	admin.POST("/recalculate-ratings", handler.RecalculateRatings)
}
