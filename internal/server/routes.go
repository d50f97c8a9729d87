package server

import (
	"time"

	"github.com/Kyz7/hub/internal/auth"
	"github.com/Kyz7/hub/internal/location"
	"github.com/Kyz7/hub/internal/middleware"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/page"
	"github.com/Kyz7/hub/internal/role"
	"github.com/Kyz7/hub/internal/storage"
	"github.com/Kyz7/hub/internal/user"
	"github.com/Kyz7/hub/internal/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, store storage.Storage, corsOrigins string) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Accept-Language, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	gate := middleware.RoleGate{}
	workflowService := workflow.NewService(db, store, gate)
	workflowHandler := workflow.NewHandler(workflowService)
	pageHandler := page.NewHandler(page.NewService(db, gate, workflowService))
	locationHandler := location.NewHandler(location.NewService(db, gate))
	userHandler := user.NewHandler(user.NewService(db))
	roleHandler := role.NewHandler(role.NewService(db))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Hub API is running",
			"storage": store.Mode(),
		})
	})

	// ==========================================
	// AUTH ROUTES (No authentication required)
	// ==========================================
	authGroup := app.Group("/auth")
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), auth.LoginHandler)
	authGroup.Get("/google/login", auth.GoogleLogin)
	authGroup.Get("/google/callback", auth.GoogleCallback)
	authGroup.Post("/refresh", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 5 * time.Minute,
	}), auth.RefreshHandler)
	authGroup.Post("/logout", auth.JWTProtected(db), auth.LogoutHandler)

	// ==========================================
	// USER MANAGEMENT (Admin only)
	// ==========================================
	userGroup := app.Group("/users")
	userGroup.Use(auth.JWTProtected(db))
	userGroup.Use(auth.RoleProtected("admin"))
	userGroup.Post("/", userHandler.CreateUser)
	userGroup.Get("/", userHandler.ListUsers)
	userGroup.Get("/:id", userHandler.GetUser)
	userGroup.Put("/:id", userHandler.UpdateUser)
	userGroup.Delete("/:id", userHandler.DeleteUser)

	// ==========================================
	// ROLE MANAGEMENT (Admin only)
	// ==========================================
	roleGroup := app.Group("/roles")
	roleGroup.Use(auth.JWTProtected(db))
	roleGroup.Use(auth.RoleProtected("admin"))
	roleGroup.Post("/", roleHandler.CreateRole)
	roleGroup.Get("/", roleHandler.ListRoles)
	roleGroup.Post("/assign", roleHandler.AssignRole)
	roleGroup.Get("/:id", roleHandler.GetRole)
	roleGroup.Put("/:id", roleHandler.UpdateRole)
	roleGroup.Delete("/:id", roleHandler.DeleteRole)
	roleGroup.Post("/:id/duplicate", roleHandler.DuplicateRole)

	// ==========================================
	// PAGES
	// ==========================================
	pageGroup := app.Group("/pages")
	pageGroup.Use(auth.JWTProtected(db))
	pageGroup.Get("/", pageHandler.ListPages)
	pageGroup.Post("/", pageHandler.CreatePage)
	pageGroup.Get("/:slug", pageHandler.GetPage)
	pageGroup.Put("/:id", pageHandler.UpdatePage)
	pageGroup.Delete("/:id", pageHandler.DeletePage)
	pageGroup.Post("/:id/sections", pageHandler.CreateSection)

	// ==========================================
	// SECTIONS (capabilities are checked per transition)
	// ==========================================
	sectionGroup := app.Group("/sections")
	sectionGroup.Use(auth.JWTProtected(db))
	sectionGroup.Put("/order", workflowHandler.ReorderSections)
	sectionGroup.Post("/:id/submit", workflowHandler.SubmitSection)
	sectionGroup.Post("/:id/publish", workflowHandler.PublishSection)
	sectionGroup.Post("/:id/unpublish", workflowHandler.UnpublishSection)
	sectionGroup.Delete("/:id", workflowHandler.DeleteSection)
	sectionGroup.Get("/:id/history", workflowHandler.SectionHistory)
	sectionGroup.Post("/:id/contents", workflowHandler.AddContent)

	// ==========================================
	// CONTENTS
	// ==========================================
	contentGroup := app.Group("/contents")
	contentGroup.Use(auth.JWTProtected(db))
	contentGroup.Put("/order", workflowHandler.ReorderContents)
	contentGroup.Post("/:id/submit", workflowHandler.SubmitContent)
	contentGroup.Post("/:id/display", workflowHandler.DisplayContent)
	contentGroup.Post("/:id/hide", workflowHandler.HideContent)
	contentGroup.Delete("/:id", workflowHandler.DeleteContent)
	contentGroup.Get("/:id/history", workflowHandler.ContentHistory)

	// ==========================================
	// LOCATIONS
	// ==========================================
	app.Get("/locations", locationHandler.Directory)

	locationGroup := app.Group("/locations/manage")
	locationGroup.Use(auth.JWTProtected(db))
	locationGroup.Use(middleware.PermissionProtected(models.HubModule, models.CapManageLocations))
	locationGroup.Get("/", locationHandler.FullDirectory)
	locationGroup.Post("/divisions", locationHandler.CreateDivision)
	locationGroup.Put("/divisions/:id", locationHandler.UpdateDivision)
	locationGroup.Delete("/divisions/:id", locationHandler.DeleteDivision)
	locationGroup.Post("/divisions/:id/branches", locationHandler.CreateBranch)
	locationGroup.Put("/branches/:id", locationHandler.UpdateBranch)
	locationGroup.Delete("/branches/:id", locationHandler.DeleteBranch)
}
