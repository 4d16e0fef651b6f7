package server

import (
	"log/slog"

	"taskflow/internal/handler"
	"taskflow/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(logger *slog.Logger, tokens middleware.TokenParser, users *handler.UserHandler, tasks *handler.TaskHandler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	// Public routes
	r.POST("/register", users.Register)
	r.POST("/login", users.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(tokens))
	{
		authorized.GET("/me", users.Me)
		authorized.PUT("/me", users.UpdateProfile)

		// Task routes
		authorized.GET("/tasks", tasks.List)
		authorized.POST("/tasks", tasks.Create)
		authorized.GET("/tasks/graph", tasks.Graph)
		authorized.POST("/tasks/recompute", tasks.Recompute)
		authorized.GET("/tasks/:id", tasks.GetByID)
		authorized.PUT("/tasks/:id", tasks.Update)
		authorized.DELETE("/tasks/:id", tasks.Delete)
		authorized.POST("/tasks/:id/toggle", tasks.Toggle)
	}
	return r
}
