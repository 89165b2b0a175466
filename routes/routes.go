package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/room-server/controllers"
	"github.com/vnkhanh/room-server/middleware"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/google/login", controllers.GoogleLoginHandler)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthJWT())
		{
			protected.GET("/me", controllers.Me)
			protected.PUT("/users/connection", controllers.UpdateConnection)
		}

		rooms := api.Group("/rooms")
		{
			rooms.Use(middleware.AuthJWT())
			rooms.POST("", middleware.RateLimitRoomsCreate(), controllers.CreateRoom)
			rooms.GET("", controllers.GetUserRooms)
			rooms.GET("/:roomId", controllers.GetRoomDetail)
			rooms.GET("/:roomId/access", controllers.CheckRoomPermission)
			rooms.POST("/:roomId/join", controllers.JoinRoomRequest)
			rooms.GET("/:roomId/pending", controllers.GetPendingRequests)
			rooms.PUT("/:roomId/approve", controllers.ApproveJoinRequest)
			rooms.PUT("/:roomId/reject", controllers.RejectJoinRequest)
			rooms.PUT("/:roomId/pending", controllers.SetParticipantPending)
			rooms.PUT("/:roomId/promote", controllers.PromoteToAdmin)
			rooms.PUT("/:roomId/activity", controllers.UpdateRoomActivity)
			rooms.DELETE("/:roomId", controllers.DeleteRoom)
		}
		// tra room theo link chia sẻ, không cần đăng nhập
		api.GET("/rooms/share/:shareURL", controllers.GetRoomByShareURL)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/rooms/cleanup", controllers.ManualCleanup)
			admin.GET("/rooms/expiring", controllers.GetExpiringRooms)
			admin.GET("/rooms/stats", controllers.GetRoomStats)
		}
	}
}
