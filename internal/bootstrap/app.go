package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docassist/internal/ai"
	"docassist/internal/app"
	"docassist/internal/cache"
	"docassist/internal/chunker"
	"docassist/internal/config"
	"docassist/internal/model"
	mysqlClient "docassist/internal/platform/mysql"
	rabbitmqClient "docassist/internal/platform/rabbitmq"
	redisClient "docassist/internal/platform/redis"
	"docassist/internal/repository"
	"docassist/internal/worker"
)

// App holds every long-lived component. The embedding client is constructed
// once here and injected everywhere it is needed; EmbedPool is drained and
// the worker stopped on Close.
type App struct {
	Config    *config.Config
	MySQL     *gorm.DB
	Redis     *redis.Client
	MQConn    *amqp.Connection
	EmbedPool *ai.EmbedPool

	Ingest    *app.IngestService
	Query     *app.QueryService
	Documents *app.DocumentService

	IngestWorker *worker.IngestWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	// An overlap >= chunk size would loop forever; refuse to boot.
	if err := chunker.Validate(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap); err != nil {
		return nil, fmt.Errorf("invalid chunking config: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), &model.Document{}, &model.Chunk{})
	if err != nil {
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	llmClient := ai.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey)
	embedder := ai.NewEmbedder(llmClient, cfg.LLM.EmbeddingModel, cfg.LLM.EmbeddingDimension)
	embedPool := ai.NewEmbedPool(embedder, cfg.Ingest.EmbedWorkers, cfg.Ingest.EmbedBatchSize)
	generator := ai.NewGenerator(llmClient, cfg.LLM.Model)

	docRepo := repository.NewDocumentRepository(mysqlDB)
	chunkRepo := repository.NewChunkRepository(mysqlDB)
	answerCache := cache.NewAnswerCache(redisCli, time.Duration(cfg.Query.AnswerTTLSeconds)*time.Second)
	publisher := rabbitmqClient.NewIngestPublisher(mqConn, cfg.Ingest.Queue)

	ingestSvc := app.NewIngestService(
		docRepo,
		publisher,
		embedPool,
		answerCache,
		cfg.Ingest.ChunkSize,
		cfg.Ingest.ChunkOverlap,
		time.Duration(cfg.Ingest.TimeoutSeconds)*time.Second,
	)
	querySvc := app.NewQueryService(
		docRepo,
		chunkRepo,
		embedPool,
		generator,
		answerCache,
		cfg.Query.TopK,
		cfg.Query.MaxContextChars,
	)
	documentSvc := app.NewDocumentService(docRepo, chunkRepo, answerCache)

	ingestWorker := worker.NewIngestWorker(mqConn, ingestSvc, cfg.Ingest.Queue)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:       cfg,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		EmbedPool:    embedPool,
		Ingest:       ingestSvc,
		Query:        querySvc,
		Documents:    documentSvc,
		IngestWorker: ingestWorker,
		StartedAt:    time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.EmbedPool != nil {
		a.EmbedPool.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
