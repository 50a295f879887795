package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/recaatinga-api/internal/middleware"
)

// RegisterRoutes mounts the full API surface on the router. Everything except
// the auth endpoints sits behind RequireAuth; the admin subtree additionally
// requires the admin role.
func RegisterRoutes(
	router *gin.Engine,
	authMW *middleware.AuthMiddleware,
	authHandler *AuthHandler,
	gameHandler *GameHandler,
	adminHandler *AdminHandler,
	strictLimit, defaultLimit gin.HandlerFunc,
) {
	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", strictLimit, authHandler.Register)
			authGroup.POST("/login", strictLimit, authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
		}

		// The :game segment is a slug on the detail read and a numeric ID on
		// the progress routes, matching the original client.
		games := api.Group("/games/:game")
		games.Use(authMW.RequireAuth())
		{
			games.GET("", gameHandler.GetGame)

			gameWithID := games.Group("")
			gameWithID.Use(middleware.ExtractUintParam("game", ContextGameID))
			{
				gameWithID.GET("/progress", gameHandler.GetProgress)
				gameWithID.POST("/progress", gameHandler.SubmitProgress)
			}
		}

		authed := api.Group("")
		authed.Use(authMW.RequireAuth())
		{
			authed.GET("/games", gameHandler.ListGames)
			authed.GET("/progress", gameHandler.ListMyProgress)
			authed.GET("/users/me", authHandler.Me)
			authed.POST("/admin/verify", defaultLimit, authHandler.ElevateToAdmin)
		}

		admin := api.Group("/admin")
		admin.Use(authMW.RequireAuth(), authMW.AdminOnly())
		{
			admin.GET("/stats", adminHandler.GetStats)

			admin.GET("/users", adminHandler.ListUsers)
			adminUser := admin.Group("/users/:userId")
			adminUser.Use(middleware.ExtractUintParam("userId", ContextTargetID))
			{
				adminUser.PATCH("/toggle", adminHandler.ToggleUser)
				adminUser.DELETE("", adminHandler.DeleteUser)
			}

			admin.GET("/games", adminHandler.ListGames)
			admin.POST("/games", adminHandler.CreateGame)

			adminGame := admin.Group("/games/:gameId")
			adminGame.Use(middleware.ExtractUintParam("gameId", ContextGameID))
			{
				adminGame.GET("", adminHandler.GetGame)
				adminGame.PUT("", adminHandler.UpdateGame)
				adminGame.DELETE("", adminHandler.DeleteGame)

				adminGame.POST("/levels", adminHandler.AddLevel)

				adminLevel := adminGame.Group("/levels/:levelId")
				adminLevel.Use(middleware.ExtractUintParam("levelId", ContextLevelID))
				{
					adminLevel.PUT("", adminHandler.UpdateLevel)
					adminLevel.DELETE("", adminHandler.DeleteLevel)
					adminLevel.PUT("/questions", adminHandler.ReplaceQuestions)
					adminLevel.POST("/questions/import", adminHandler.ImportQuestions)
				}
			}
		}
	}
}
