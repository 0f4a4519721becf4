package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker/internal/middleware"
	"github.com/yukikurage/task-tracker/internal/services"
)

// Services are the collaborators the HTTP surface is built on.
type Services struct {
	Auth       *services.AuthService
	Tasks      *services.TaskService
	Categories *services.CategoryService
}

// RegisterRoutes mounts the API, browser and health routes on r. The
// sessions middleware must already be installed for the /web routes.
func RegisterRoutes(r *gin.Engine, svc Services, cookie CookieOptions) {
	authHandler := NewAuthHandler(svc.Auth)
	taskHandler := NewTaskHandler(svc.Tasks)
	categoryHandler := NewCategoryHandler(svc.Categories)
	webHandler := NewWebHandler(svc.Auth, svc.Tasks, svc.Categories, cookie)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	requireAuth := middleware.RequireAuth(svc.Auth)
	requireOwner := middleware.RequireTaskOwnership(svc.Tasks)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		api.DELETE("/users/me", requireAuth, authHandler.DeleteAccount)

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", requireOwner, taskHandler.GetTask)
			tasks.PATCH("/:id", requireOwner, taskHandler.UpdateTask)
			tasks.DELETE("/:id", requireOwner, taskHandler.DeleteTask)
			tasks.PUT("/:id/status", requireOwner, taskHandler.UpdateStatus)
			tasks.PUT("/:id/priority", requireOwner, taskHandler.UpdatePriority)
			tasks.PUT("/:id/description", requireOwner, taskHandler.UpdateDescription)
			tasks.PUT("/:id/deadline", requireOwner, taskHandler.UpdateDeadline)
			tasks.PUT("/:id/categories", requireOwner, taskHandler.UpdateCategories)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.POST("", requireAuth, middleware.RequireAdmin(), categoryHandler.CreateCategory)
			categories.DELETE("/:id", requireAuth, middleware.RequireAdmin(), categoryHandler.DeleteCategory)
			categories.POST("/delete", requireAuth, middleware.RequireAdmin(), categoryHandler.DeleteCategories)
		}
	}

	requireCookie := middleware.RequireCookieAuth(svc.Auth, cookie.Name)

	web := r.Group("/web")
	{
		web.POST("/register", webHandler.Register)
		web.POST("/login", webHandler.Login)
		web.POST("/logout", webHandler.Logout)
		web.GET("/flashes", webHandler.Flashes)

		web.POST("/account/delete", requireCookie, webHandler.DeleteAccount)
		web.GET("/tasks", requireCookie, webHandler.ListTasks)
		web.POST("/tasks", requireCookie, webHandler.CreateTask)
		web.POST("/tasks/:id/edit", requireCookie, webHandler.EditTask)
		web.POST("/tasks/:id/delete", requireCookie, webHandler.DeleteTask)
		web.POST("/categories", requireCookie, middleware.RequireAdmin(), webHandler.CreateCategory)
		web.POST("/categories/delete", requireCookie, middleware.RequireAdmin(), webHandler.DeleteCategories)
	}
}
