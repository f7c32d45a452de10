package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	googleauth "resume-scorer/internal/auth"
	"resume-scorer/internal/extract"
	"resume-scorer/internal/llm"
	"resume-scorer/internal/llm/providers"
	"resume-scorer/internal/resumes"
	sharedauth "resume-scorer/internal/shared/auth"
	"resume-scorer/internal/shared/config"
	"resume-scorer/internal/shared/server"
	"resume-scorer/internal/shared/server/middleware"
	"resume-scorer/internal/shared/storage/db"
	"resume-scorer/internal/shared/storage/object"
	"resume-scorer/internal/shared/storage/object/local"
	objects3 "resume-scorer/internal/shared/storage/object/s3"
	"resume-scorer/internal/shared/telemetry"
	"resume-scorer/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Gorm           *gorm.DB
	Signer         *sharedauth.Signer
	Scorer         llm.Scorer
	Archive        object.Store
	ResumesRepo    resumes.Repo
	UsersRepo      users.Repo
	ResumesService *resumes.Service
	UsersService   *users.Service
	ResumesHandler *resumes.Handler
	UsersHandler   *users.Handler
	GoogleAuth     *googleauth.GoogleService
}

// Option overrides a dependency during Build.
type Option func(*buildOptions)

type buildOptions struct {
	scorer    llm.Scorer
	extractor extract.Extractor
}

// WithScorer replaces the model chain. Used by tests and offline runs.
func WithScorer(s llm.Scorer) Option {
	return func(o *buildOptions) { o.scorer = s }
}

// WithExtractor replaces the PDF extractor.
func WithExtractor(e extract.Extractor) Option {
	return func(o *buildOptions) { o.extractor = e }
}

// Build wires every dependency and the router.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}
	if sqlDB != nil {
		gdb, err := db.OpenGorm(sqlDB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		app.Gorm = gdb
	}

	signer, err := sharedauth.NewSigner(cfg.JWTSecret, cfg.Env)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Signer = signer

	scorer := bo.scorer
	if scorer == nil {
		scorer, err = buildScorer(ctx, cfg)
		if err != nil {
			app.Close()
			return nil, err
		}
	}
	app.Scorer = scorer

	extractor := bo.extractor
	if extractor == nil {
		extractor = extract.PDF{}
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Archive = archive

	if err := buildServices(app, extractor); err != nil {
		app.Close()
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		DB:             app.DB,
		Verifier:       app.Signer,
		ResumesHandler: app.ResumesHandler,
		UsersHandler:   app.UsersHandler,
		GoogleAuth:     app.GoogleAuth,
	})

	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	db.ExportPoolStats(sqlDB)
	return sqlDB, nil
}

// buildArchive returns nil when uploads are not kept.
func buildArchive(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ArchiveBackend {
	case "":
		return nil, nil
	case "local":
		telemetry.Info("bootstrap.archive", map[string]any{"backend": "local", "dir": cfg.ArchiveDir})
		return local.New(cfg.ArchiveDir), nil
	case "s3":
		store, err := objects3.New(ctx, objects3.Config{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.ArchiveBucket,
			Prefix:   cfg.ArchivePrefix,
			KMSKeyID: cfg.ArchiveKMSKeyID,
		})
		if err != nil {
			return nil, fmt.Errorf("build archive: %w", err)
		}
		telemetry.Info("bootstrap.archive", map[string]any{"backend": "s3", "bucket": cfg.ArchiveBucket})
		return store, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.ArchiveBackend)
	}
}

func buildScorer(ctx context.Context, cfg config.Config) (llm.Scorer, error) {
	specs, err := llm.ResolveCandidates(cfg.LLMCandidates, cfg.LLMCandidatesFile, cfg.OpenAIModel)
	if err != nil {
		return nil, err
	}
	candidates, err := providers.Build(ctx, specs, providers.Keys{
		GeminiAPIKey: cfg.GeminiAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	})
	if err != nil {
		return nil, err
	}
	chain := llm.NewChain(cfg.CandidateTimeout, candidates...)
	telemetry.Info("llm.chain_configured", map[string]any{
		"candidates": chain.Candidates(),
		"timeout_ms": cfg.CandidateTimeout.Milliseconds(),
	})
	return chain, nil
}

func buildServices(app *App, extractor extract.Extractor) error {
	scope, err := resumes.ParseDedupScope(app.Config.DedupScope)
	if err != nil {
		return err
	}

	var resumeRepo resumes.Repo
	var userRepo users.Repo
	if app.Gorm != nil {
		resumeRepo = resumes.NewGormRepo(app.Gorm)
		userRepo = users.NewGormRepo(app.Gorm)
	} else {
		resumeRepo = resumes.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	resumeSvc := &resumes.Service{
		Repo:         resumeRepo,
		Extractor:    extractor,
		Scorer:       app.Scorer,
		Archive:      app.Archive,
		QuotaLimit:   app.Config.QuotaLimit,
		MaxFileBytes: app.Config.MaxFileBytes,
		DedupScope:   scope,
	}

	var uploadLimit gin.HandlerFunc
	if app.Config.UploadRatePerMinute > 0 {
		uploadLimit = middleware.RateLimit("resume_upload", middleware.PerMinute(app.Config.UploadRatePerMinute), middleware.NewRateLimiter(nil))
	}

	userSvc := users.NewService(userRepo)
	googleAuthSvc := googleauth.NewGoogleService(googleauth.GoogleConfig{
		ClientID:     app.Config.GoogleClientID,
		ClientSecret: app.Config.GoogleClientSecret,
		RedirectURL:  app.Config.GoogleRedirectURL,
		UIRedirect:   app.Config.UIRedirectURL,
	}, app.Signer, userSvc)

	app.ResumesRepo = resumeRepo
	app.UsersRepo = userRepo
	app.ResumesService = resumeSvc
	app.UsersService = userSvc
	app.ResumesHandler = resumes.NewHandler(resumeSvc, uploadLimit)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc

	if app.ResumesHandler == nil || app.UsersHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
