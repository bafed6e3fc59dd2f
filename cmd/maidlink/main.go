package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
	"github.com/segmentio/kafka-go"
	tallylib "github.com/uber-go/tally/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	config "github.com/davicafu/maidlink/internal/config"
	flagsApp "github.com/davicafu/maidlink/internal/featureflags/application"
	flagsHttp "github.com/davicafu/maidlink/internal/featureflags/infra/inbound/http"
	flagsRepo "github.com/davicafu/maidlink/internal/featureflags/infra/outbound/db/postgres"
	identityApp "github.com/davicafu/maidlink/internal/identity/application"
	identityDomain "github.com/davicafu/maidlink/internal/identity/domain"
	identityHttp "github.com/davicafu/maidlink/internal/identity/infra/inbound/http"
	identityRepo "github.com/davicafu/maidlink/internal/identity/infra/outbound/db/sqlite"
	recruitmentApp "github.com/davicafu/maidlink/internal/recruitment/application"
	recruitmentDomain "github.com/davicafu/maidlink/internal/recruitment/domain"
	recruitmentHttp "github.com/davicafu/maidlink/internal/recruitment/infra/inbound/http"
	recruitmentRepo "github.com/davicafu/maidlink/internal/recruitment/infra/outbound/db/postgres"
	chAnalytics "github.com/davicafu/maidlink/internal/shared/infra/analytics/clickhouse"
	sharedCacheInfra "github.com/davicafu/maidlink/internal/shared/infra/cache"
	outboxMongo "github.com/davicafu/maidlink/internal/shared/infra/db/mongodb"
	outboxPostgres "github.com/davicafu/maidlink/internal/shared/infra/db/postgres"
	outboxSQLite "github.com/davicafu/maidlink/internal/shared/infra/db/sqlite"
	infraEvents "github.com/davicafu/maidlink/internal/shared/infra/events"
	"github.com/davicafu/maidlink/internal/shared/infra/relayer"
	sharedBus "github.com/davicafu/maidlink/internal/shared/platform/bus"
	sharedCache "github.com/davicafu/maidlink/internal/shared/platform/cache"
	tallyMetrics "github.com/davicafu/maidlink/internal/shared/platform/metrics/tally"
	sponsorApp "github.com/davicafu/maidlink/internal/sponsor/application"
	sponsorDomain "github.com/davicafu/maidlink/internal/sponsor/domain"
	sponsorHttp "github.com/davicafu/maidlink/internal/sponsor/infra/inbound/http"
	sponsorRepo "github.com/davicafu/maidlink/internal/sponsor/infra/outbound/db/mongodb"
	"github.com/davicafu/maidlink/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	logger.Init()          // inicializa zap
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	ctx := context.Background()
	cfg := config.LoadConfig()
	clock := clockwork.NewRealClock()

	// ---------------- SQLite (identity) ----------------
	sqliteDB, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		log.Fatal("failed to open SQLite", zap.Error(err))
	}
	defer sqliteDB.Close()

	if err := identityRepo.InitSQLite(sqliteDB); err != nil {
		log.Fatal("failed to initialize SQLite", zap.Error(err))
	}
	if err := sqliteDB.PingContext(ctx); err != nil {
		log.Fatal("failed to ping SQLite", zap.Error(err))
	}

	userRepoSQLite := identityRepo.NewUserRepoSQLite(sqliteDB)
	resetRepoSQLite := identityRepo.NewPasswordResetRepoSQLite(sqliteDB)

	// ---------------- Postgres (recruitment, flags) ----------------
	pgDB, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to open Postgres", zap.Error(err))
	}
	defer pgDB.Close()

	if err := pgDB.PingContext(ctx); err != nil {
		log.Fatal("failed to ping Postgres", zap.Error(err))
	}
	if err := outboxPostgres.InitOutboxSchema(pgDB); err != nil {
		log.Fatal("failed to initialize Postgres outbox", zap.Error(err))
	}
	if err := recruitmentRepo.InitPostgres(pgDB); err != nil {
		log.Fatal("failed to initialize job_applications table", zap.Error(err))
	}
	if err := flagsRepo.InitPostgres(pgDB); err != nil {
		log.Fatal("failed to initialize feature_flags table", zap.Error(err))
	}

	applicationRepoPostgres := recruitmentRepo.NewApplicationRepoPostgres(pgDB)
	flagRepoPostgres := flagsRepo.NewFlagRepoPostgres(pgDB)

	// ---------------- MongoDB (sponsor) ----------------
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatal("failed to ping MongoDB", zap.Error(err))
	}

	profileRepoMongo := sponsorRepo.NewProfileRepoMongoDB(mongoClient, cfg.MongoDB)
	outboxRepoMongo := outboxMongo.NewOutboxRepoMongoDB(mongoClient, cfg.MongoDB)

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		cacheInstance = sharedCacheInfra.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	} else {
		cacheInstance = sharedCacheInfra.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ---------------- Metrics ----------------
	scope, scopeCloser := tallylib.NewRootScope(tallylib.ScopeOptions{Prefix: "maidlink"}, time.Second)
	defer scopeCloser.Close()

	// ---------------- Event Bus ----------------
	// El outbox del bus apunta a Mongo: es el backend del contexto sponsor,
	// el único que persiste sus eventos en el momento de publicarlos.
	bus := sharedBus.NewEventBus(log,
		sharedBus.WithOutbox(outboxRepoMongo),
		sharedBus.WithPublishedCounter(tallyMetrics.NewCounter(scope, "events_published")),
		sharedBus.WithHandlerErrorCounter(tallyMetrics.NewCounter(scope, "handler_errors")),
		sharedBus.WithOutboxErrorCounter(tallyMetrics.NewCounter(scope, "outbox_errors")),
	)

	allEventTypes := identityDomain.EventTypes()
	allEventTypes = append(allEventTypes, recruitmentDomain.EventTypes()...)
	allEventTypes = append(allEventTypes, sponsorDomain.EventTypes()...)

	// ---------------- Kafka ----------------
	kafkaWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers...),
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.Hash{},
	}
	defer kafkaWriter.Close()

	forwarder := infraEvents.NewKafkaForwarder(kafkaWriter, log)
	forwarder.RegisterAll(bus, allEventTypes...)
	log.Info("🚀 Kafka forwarder suscrito", zap.String("topic", cfg.KafkaTopic))

	// ---------------- ClickHouse ----------------
	eventLog, err := chAnalytics.NewEventLogRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
	if err != nil {
		log.Warn("⚠️ ClickHouse no disponible, sin log analítico de eventos", zap.Error(err))
	} else {
		if err := eventLog.InitSchema(); err != nil {
			log.Warn("⚠️ No se pudo crear el esquema de ClickHouse", zap.Error(err))
		} else {
			eventLog.RegisterAll(bus, allEventTypes...)
			log.Info("✅ ClickHouse conectado, log de eventos habilitado")
		}
	}

	// --------------- Servicios --------------
	userService := identityApp.NewUserService(userRepoSQLite, cacheInstance, bus, log)
	resetService := identityApp.NewPasswordResetService(resetRepoSQLite, userRepoSQLite, bus, 0, log)
	applicationService := recruitmentApp.NewApplicationService(applicationRepoPostgres, bus, log)
	sponsorService := sponsorApp.NewSponsorService(profileRepoMongo, bus, log)
	flagService := flagsApp.NewFlagService(flagRepoPostgres, cfg.FlagEnvPrefix, cfg.FlagCacheTTL, clock, log)

	// ------------ Outbox Workers ------------
	// Un worker por almacén: cada contexto escribe su outbox en su propia base.
	sqliteWorker := relayer.NewWorker(outboxSQLite.NewOutboxRepoSQLite(sqliteDB), bus, cfg.OutboxPeriod, cfg.OutboxBatchSize, clock, log)
	go sqliteWorker.Start(ctx)

	postgresWorker := relayer.NewWorker(outboxPostgres.NewOutboxRepoPostgres(pgDB), bus, cfg.OutboxPeriod, cfg.OutboxBatchSize, clock, log)
	go postgresWorker.Start(ctx)

	mongoWorker := relayer.NewWorker(outboxRepoMongo, bus, cfg.OutboxPeriod, cfg.OutboxBatchSize, clock, log)
	go mongoWorker.Start(ctx)

	// Barrido periódico de solicitudes de reset vencidas.
	go func() {
		ticker := clock.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if n := resetService.ExpireStale(ctx, 100); n > 0 {
					log.Info("🔄 Solicitudes de reset expiradas", zap.Int("count", n))
				}
			}
		}
	}()

	// ---------------- HTTP ----------------
	userHandler := identityHttp.NewUserHandler(userService)
	resetHandler := identityHttp.NewPasswordResetHandler(resetService)
	applicationHandler := recruitmentHttp.NewApplicationHandler(applicationService)
	sponsorHandler := sponsorHttp.NewSponsorHandler(sponsorService)
	flagHandler := flagsHttp.NewFlagHandler(flagService)

	router := gin.Default()
	identityHttp.RegisterIdentityRoutes(router, userHandler, resetHandler)
	recruitmentHttp.RegisterRecruitmentRoutes(router, applicationHandler)
	sponsorHttp.RegisterSponsorRoutes(router, sponsorHandler)
	flagsHttp.RegisterFlagRoutes(router, flagHandler)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server: %v", zap.Error(err))
	}
}
