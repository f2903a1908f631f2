package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/imcufide/convocatorias/config"
	"github.com/imcufide/convocatorias/internal/handlers"
	"github.com/imcufide/convocatorias/internal/middleware"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	r := gin.Default()

	SetupRoutes(r, db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	r.Use(middleware.DatabaseMiddleware(db))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		convocatoriaPublic := public.Group("/convocatorias")
		{
			convocatoriaPublic.GET("", handlers.ListConvocatorias)
			convocatoriaPublic.GET("/:id", handlers.GetConvocatoria)
			convocatoriaPublic.GET("/:id/pdf", handlers.ExportConvocatoriaPDF)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		convocatoriaProtected := protected.Group("/convocatorias")
		{
			convocatoriaProtected.POST("", handlers.CreateConvocatoria)
			convocatoriaProtected.POST("/preview", handlers.PreviewConvocatoria)
			convocatoriaProtected.PUT("/:id", handlers.UpdateConvocatoria)
			convocatoriaProtected.DELETE("", handlers.DeleteConvocatoria)
		}
	}
}
