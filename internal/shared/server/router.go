package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scooter7/BrioCurriculum/internal/analysis"
	"github.com/scooter7/BrioCurriculum/internal/curricula"
	"github.com/scooter7/BrioCurriculum/internal/llm"
	"github.com/scooter7/BrioCurriculum/internal/llm/gemini"
	"github.com/scooter7/BrioCurriculum/internal/shared/config"
	"github.com/scooter7/BrioCurriculum/internal/shared/metrics"
	"github.com/scooter7/BrioCurriculum/internal/shared/server/middleware"
	"github.com/scooter7/BrioCurriculum/internal/shared/server/respond"
	"github.com/scooter7/BrioCurriculum/internal/shared/storage/db"
	"github.com/scooter7/BrioCurriculum/internal/shared/storage/object"
	localstore "github.com/scooter7/BrioCurriculum/internal/shared/storage/object/local"
	s3store "github.com/scooter7/BrioCurriculum/internal/shared/storage/object/s3"
)

// Deps allows tests and callers to override wired dependencies. Nil fields
// are built from configuration.
type Deps struct {
	Repo  curricula.Repo
	Store object.ObjectStore
	LLM   llm.Client
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	return NewRouterWithDeps(cfg, Deps{})
}

// NewRouterWithDeps constructs the router with explicit dependencies.
func NewRouterWithDeps(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	store := deps.Store
	if store == nil {
		store = buildStore(cfg)
	}

	repo := deps.Repo
	if repo == nil {
		repo = buildRepo(cfg)
	}

	llmClient := deps.LLM
	if llmClient == nil {
		llmClient = buildLLM(cfg)
	}

	curriculaSvc := &curricula.Service{Store: store, Repo: repo}
	curriculaHandler := curricula.NewHandler(curriculaSvc)

	analysisSvc := &analysis.Service{
		Repo:            repo,
		Store:           store,
		LLM:             llmClient,
		Engine:          cfg.AnalysisEngine,
		MinTextLength:   cfg.MinTextLength,
		PromptTextLimit: cfg.PromptTextLimit,
		MaxAttempts:     cfg.LLMMaxAttempts,
	}
	analysisHandler := analysis.NewHandler(analysisSvc)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	curriculaHandler.RegisterRoutes(api)
	analysisHandler.RegisterRoutes(api)

	return r
}

func buildStore(cfg config.Config) object.ObjectStore {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			log.Printf("failed to build s3 store, falling back to local: %v", err)
			return localstore.New(cfg.LocalStoreDir)
		}
		return store
	}
	return localstore.New(cfg.LocalStoreDir)
}

func buildRepo(cfg config.Config) curricula.Repo {
	if cfg.DatabaseURL == "" {
		return curricula.NewMemoryRepo()
	}

	ctx := context.Background()
	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	var sqlDB *sql.DB
	dbConn, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
	} else {
		if err := db.RunMigrations(ctx, dbConn); err != nil {
			log.Printf("failed to run migrations, falling back to memory: %v", err)
			dbConn.Close()
			dbConn = nil
		}
		sqlDB = dbConn
	}
	if sqlDB == nil {
		return curricula.NewMemoryRepo()
	}
	return &curricula.PGRepo{DB: sqlDB}
}

func buildLLM(cfg config.Config) llm.Client {
	if cfg.GeminiAPIKey == "" {
		log.Printf("GEMINI_API_KEY not set; analysis runs will fail until configured")
		return llm.NotConfiguredClient{}
	}
	client, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Printf("failed to build generation client: %v", err)
		return llm.NotConfiguredClient{}
	}
	return client
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
