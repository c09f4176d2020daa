package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"evolvers-admin/internal/api"
	"evolvers-admin/internal/config"
	"evolvers-admin/internal/controller"
	"evolvers-admin/internal/draft"
	"evolvers-admin/internal/handlers"
	"evolvers-admin/internal/media"
	"evolvers-admin/internal/middleware"
	"evolvers-admin/internal/service"
	"evolvers-admin/internal/session"
	"evolvers-admin/pkg/logger"
)

type Application struct {
	cfg *config.Config

	kv       draft.KV
	store    *draft.Store
	client   *api.Client
	sessions *session.Manager
	form     *controller.CourseForm

	services serviceContainer
	handlers handlerContainer

	router *gin.Engine
	server *http.Server
}

type serviceContainer struct {
	Course    *service.CourseService
	Dashboard *service.DashboardService
}

type handlerContainer struct {
	Auth      *handlers.AuthHandler
	Draft     *handlers.DraftHandler
	Course    *handlers.CourseHandler
	Catalog   *handlers.CatalogHandler
	Dashboard *handlers.DashboardHandler
}

func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &Application{cfg: cfg}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.initSession()
	app.initClient()
	app.initServices()
	app.initHandlers()
	app.initRouter()

	app.server = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        app.router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

func (a *Application) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
		"backend":     a.cfg.APIBaseURL,
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	if a.sessions != nil {
		a.sessions.End()
	}

	if closer, ok := a.kv.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error(err, "Failed to close draft store connection", nil)
		}
	}

	return nil
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) initStore() error {
	if a.cfg.EnableRedis {
		kv, err := draft.NewRedisKV(a.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.kv = kv
	} else {
		logger.Warn("Redis disabled, drafts will not survive restarts", nil)
		a.kv = draft.NewMemoryKV()
	}

	a.store = draft.NewStore(a.kv)
	return nil
}

func (a *Application) initSession() {
	timeout := time.Duration(a.cfg.InactivityTimeoutMinutes) * time.Minute
	a.sessions = session.NewManager(timeout)
}

func (a *Application) initClient() {
	a.client = api.NewClient(a.cfg.APIBaseURL, a.cfg.APIOrigin, a.sessions)
}

func (a *Application) initServices() {
	resolver := media.NewResolver(a.client)
	courseService := service.NewCourseService(a.store, a.client, resolver)

	a.services = serviceContainer{
		Course:    courseService,
		Dashboard: service.NewDashboardService(a.client),
	}

	a.form = controller.NewCourseForm(courseService)

	a.sessions.OnExpire(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.form.Persist(ctx); err != nil {
			logger.Error(err, "Failed to persist draft after session expiry", nil)
		}
	})
}

func (a *Application) initHandlers() {
	a.handlers = handlerContainer{
		Auth:      handlers.NewAuthHandler(a.client, a.sessions),
		Draft:     handlers.NewDraftHandler(a.form, a.cfg.MaxUploadSize, a.cfg.MaxVideoThumbSize),
		Course:    handlers.NewCourseHandler(a.services.Course),
		Catalog:   handlers.NewCatalogHandler(a.client),
		Dashboard: handlers.NewDashboardHandler(a.services.Dashboard),
	}
}

func (a *Application) initRouter() {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger())
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.MaxMultipartMemory = a.cfg.MaxUploadSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		{
			public.POST("/login", a.handlers.Auth.Login)
			public.POST("/logout", a.handlers.Auth.Logout)
			public.GET("/session", a.handlers.Auth.Status)
		}

		protected := v1.Group("")
		protected.Use(middleware.SessionMiddleware(a.sessions))
		{
			protected.GET("/dashboard", a.handlers.Dashboard.GetStats)

			protected.GET("/courses", a.handlers.Course.GetAll)
			protected.GET("/courses/:id", a.handlers.Course.GetByID)
			protected.DELETE("/courses/:id", a.handlers.Course.Delete)
			protected.POST("/courses/:id/edit", a.handlers.Draft.Edit)

			protected.GET("/draft", a.handlers.Draft.Get)
			protected.PATCH("/draft", a.handlers.Draft.Patch)
			protected.POST("/draft/cover", a.handlers.Draft.UploadCover)
			protected.POST("/draft/carousel", a.handlers.Draft.AddCarouselItem)
			protected.POST("/draft/submit", a.handlers.Draft.Submit)
			protected.POST("/draft/discard", a.handlers.Draft.Discard)

			protected.GET("/categories", a.handlers.Catalog.GetCategories)
			protected.GET("/levels", a.handlers.Catalog.GetLevels)
			protected.GET("/software", a.handlers.Catalog.GetSoftware)
			protected.GET("/tags", a.handlers.Catalog.GetTags)
			protected.GET("/instructors", a.handlers.Catalog.GetInstructors)
			protected.GET("/badges", a.handlers.Catalog.GetBadges)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})

	a.router = router
}

// ResumeDraft loads any stored draft into the form at startup so an
// interrupted authoring session picks up where it left off.
func (a *Application) ResumeDraft(ctx context.Context) {
	if err := a.form.Resume(ctx); err != nil {
		logger.Error(err, "Failed to resume stored draft", nil)
	}
}
