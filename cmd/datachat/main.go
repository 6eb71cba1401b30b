package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/datachat/internal/ai"
	"github.com/xxxsen/datachat/internal/config"
	"github.com/xxxsen/datachat/internal/db"
	"github.com/xxxsen/datachat/internal/document"
	"github.com/xxxsen/datachat/internal/embedcache"
	"github.com/xxxsen/datachat/internal/handler"
	"github.com/xxxsen/datachat/internal/job"
	"github.com/xxxsen/datachat/internal/memory"
	"github.com/xxxsen/datachat/internal/middleware"
	"github.com/xxxsen/datachat/internal/pkg/jwt"
	"github.com/xxxsen/datachat/internal/repo"
	"github.com/xxxsen/datachat/internal/schedule"
	"github.com/xxxsen/datachat/internal/service"
	"github.com/xxxsen/datachat/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "datachat",
		Short: "datachat dataset chat server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run datachat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	var tokenSubject string
	var tokenTTLHours int
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "mint an api token for a caller",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("jwt_secret is not configured")
			}
			token, err := jwt.GenerateToken(tokenSubject, []byte(cfg.JWTSecret), time.Duration(tokenTTLHours)*time.Hour)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "default", "token subject")
	tokenCmd.Flags().IntVar(&tokenTTLHours, "ttl-hours", 72, "token ttl in hours")

	var purgeModel string
	purgeCacheCmd := &cobra.Command{
		Use:   "purge-cache",
		Short: "drop cached embeddings for one model, e.g. after a model switch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			if purgeModel == "" {
				return fmt.Errorf("--model is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			deleted, err := repo.NewEmbeddingCacheRepo(database).DeleteByModel(cmd.Context(), purgeModel)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d cached embeddings for model %s\n", deleted, purgeModel)
			return nil
		},
	}
	purgeCacheCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	purgeCacheCmd.Flags().StringVar(&purgeModel, "model", "", "embedding model name")

	rootCmd.AddCommand(runCmd, tokenCmd, purgeCacheCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
		os.Exit(1)
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("vector_store", cfg.VectorStore.Type),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	datasetRepo := repo.NewDatasetRepo(database)
	cacheRepo := repo.NewEmbeddingCacheRepo(database)

	store, err := vectorstore.New(cfg.VectorStore.Type, database)
	if err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.EmbedProvider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}

	embedder := ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel)
	embedder = embedcache.WrapDurable(embedder, cacheRepo)
	embedder = embedcache.WrapLRU(embedder,
		cfg.Jobs.EmbedCacheLRUSize,
		time.Duration(cfg.Jobs.EmbedCacheTTLMinutes)*time.Minute,
	)

	completer := ai.NewCompleter(
		ai.NewGenerator(aiProvider, cfg.AI.Model),
		ai.CompleterConfig{
			Timeout:       cfg.AI.Timeout,
			MaxInputChars: cfg.AI.MaxInputChars,
		},
	)

	memStore := memory.NewStore(cfg.Chat.MemorySize)
	chatService := service.NewChatService(datasetRepo, store, embedder, completer, memStore, service.ChatConfig{
		Dimension:   cfg.AI.Dimension,
		SettleDelay: time.Duration(*cfg.Chat.SettleDelaySeconds) * time.Second,
		TopK:        cfg.Chat.TopK,
	})

	docRegistry := document.NewRegistry()
	if err := docRegistry.Register("record", document.NewRecordFactory(document.RecordConfig{})); err != nil {
		return fmt.Errorf("register document types: %w", err)
	}

	datasetHandler := handler.NewDatasetHandler(chatService, docRegistry)
	deps := handler.RouterDeps{
		Datasets:       datasetHandler,
		JWTSecret:      []byte(cfg.JWTSecret),
		ChatRateWindow: time.Duration(cfg.Chat.RateLimitMS) * time.Millisecond,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler(time.Duration(cfg.Jobs.RunTimeoutMinutes) * time.Minute)
	if err := scheduler.AddJob(job.NewDatasetReaperJob(datasetRepo, store), cfg.Jobs.ReaperSpec); err != nil {
		return err
	}
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.Jobs.CacheMaxAgeDays), cfg.Jobs.CacheCleanupSpec); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
