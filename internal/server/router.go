package server

import (
	"net/http"

	"riskmatrix/internal/config"
	"riskmatrix/internal/handlers"
	"riskmatrix/internal/middleware"
	"riskmatrix/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Static("/static", "./web/static")
	r.LoadHTMLGlob("web/templates/*.html")

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("riskmatrix_session", store))

	r.Use(middleware.InjectUser())

	// ГЛАВНАЯ
	r.GET("/", handlers.IndexPage)

	// AUTH
	r.GET("/register", handlers.ShowRegister)
	r.POST("/register", handlers.Register)
	r.GET("/login", handlers.ShowLogin)
	r.POST("/login", handlers.Login)
	r.GET("/logout", handlers.Logout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	// АКТИВЫ
	auth.GET("/assets", handlers.ListAssets)
	auth.GET("/assets/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.ShowNewAsset,
	)
	auth.POST("/assets/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.CreateAsset,
	)
	auth.GET("/assets/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.ShowEditAsset,
	)
	auth.POST("/assets/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.UpdateAsset,
	)
	auth.POST("/assets/:id/delete",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteAsset,
	)

	// КАТАЛОГИ РИСКОВ
	auth.GET("/catalogs", handlers.ListCatalogs)
	auth.GET("/catalogs/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.ShowNewCatalog,
	)
	auth.POST("/catalogs/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.CreateCatalog,
	)
	auth.GET("/catalogs/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.ShowEditCatalog,
	)
	auth.POST("/catalogs/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.UpdateCatalog,
	)
	auth.POST("/catalogs/:id/delete",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteCatalog,
	)

	// РИСКИ
	auth.GET("/risks", handlers.ListRisks)
	auth.GET("/risks/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.ShowNewRisk,
	)
	auth.POST("/risks/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.CreateRisk,
	)
	auth.GET("/risks/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.ShowEditRisk,
	)
	auth.POST("/risks/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.UpdateRisk,
	)
	auth.POST("/risks/:id/delete",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteRisk,
	)

	// ====== ОЦЕНКА РИСКОВ ======
	// шаги кампании: identify -> impact -> likelihood -> matrix -> finish
	auth.GET("/assessment", handlers.IdentifyRisks)
	auth.GET("/assessment/impact", handlers.AssessImpact)
	auth.GET("/assessment/likelihood", handlers.AssessLikelihood)
	auth.GET("/assessment/matrix", handlers.RiskMatrixPage)

	// XHR для радиокнопок оценок
	auth.POST("/assessments/:id/impact/:level",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator, models.RoleAssessor),
		handlers.SetImpact,
	)
	auth.POST("/assessments/:id/likelihood/:level",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator, models.RoleAssessor),
		handlers.SetLikelihood,
	)

	// раунды: история, закрытие, сравнение, данные матрицы
	auth.GET("/rounds", handlers.RoundHistory)
	auth.GET("/rounds/finish",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.ShowFinishRound,
	)
	auth.POST("/rounds/finish",
		middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator),
		handlers.FinishRound,
	)
	auth.GET("/rounds/compare/:base/:compare", handlers.CompareRounds)
	auth.GET("/rounds/compare/:base/:compare/data.json", handlers.CompareRoundsJSON)
	auth.GET("/rounds/:id/matrix.json", handlers.MatrixJSON)

	// АУДИТ
	auth.GET("/audit",
		middleware.RequireRole(models.RoleAdmin, models.RoleViewer),
		handlers.ListAuditLogs,
	)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
