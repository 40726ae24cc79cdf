package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-assistant/internal/audit"
	"github.com/BruksfildServices01/barber-assistant/internal/config"
	"github.com/BruksfildServices01/barber-assistant/internal/conversation"
	dbpkg "github.com/BruksfildServices01/barber-assistant/internal/db"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/interpreter"
	"github.com/BruksfildServices01/barber-assistant/internal/logging"
	"github.com/BruksfildServices01/barber-assistant/internal/notifier"
	"github.com/BruksfildServices01/barber-assistant/internal/routes"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := timezone.Configure(cfg.BusinessTimezone); err != nil {
		return err
	}

	// ======================================================
	// DIRECTORY + AUDIT
	// ======================================================
	var (
		store       directory.Store
		db          *gorm.DB
		auditLogger audit.Logger
		err         error
	)

	switch cfg.StoreDriver {
	case "postgres":
		db, err = dbpkg.NewDB(cfg, logger)
		if err != nil {
			return err
		}
		store = directory.NewGormStore(db)
		auditLogger = audit.New(db)
	default:
		mem, err := directory.NewMemoryStore(directory.WithDataDir(cfg.DataDir))
		if err != nil {
			return err
		}
		store = mem
		auditLogger = audit.NewZapLogger(logger.Named("audit"))
	}
	logger.Info("directory store ready", zap.String("driver", cfg.StoreDriver))

	auditDispatcher := audit.NewDispatcher(auditLogger, logger.Named("audit"))
	defer auditDispatcher.Close()

	// ======================================================
	// CONVERSATION STATE + LOCKS
	// ======================================================
	var (
		states conversation.Repository
		locks  conversation.Locker
	)

	switch cfg.StateDriver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return err
		}

		states = conversation.NewRedisRepository(rdb, cfg.ConversationTTL)
		locks = conversation.NewRedisLocker(rdb, cfg.LockTTL, cfg.LockWait)
	default:
		states = conversation.NewMemoryRepository(cfg.ConversationTTL)
		locks = conversation.NewLocalLocker()
	}
	logger.Info("conversation state ready", zap.String("driver", cfg.StateDriver))

	// ======================================================
	// FALLBACK INTERPRETER
	// ======================================================
	var fallback interpreter.Interpreter = interpreter.Canned{BusinessName: cfg.BusinessName}
	if cfg.GeminiAPIKey != "" {
		gemini, err := interpreter.NewGeminiInterpreter(
			rootCtx,
			cfg.GeminiAPIKey,
			cfg.GeminiModel,
			cfg.BusinessName,
			timezone.Now,
			logger.Named("gemini"),
		)
		if err != nil {
			return err
		}
		defer gemini.Close()
		fallback = gemini
	}

	// ======================================================
	// CHANNEL + NOTIFIERS
	// ======================================================
	var sender notifier.Sender = notifier.NoopSender{}
	notifiers := notifier.Multi{}

	if cfg.NotifyWebhookURL != "" {
		webhook := notifier.NewWebhookSender(cfg.NotifyWebhookURL, cfg.NotifyWebhookToken)
		sender = webhook
		notifiers = append(notifiers, webhook)
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := notifier.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafka.Close()
		notifiers = append(notifiers, kafka)
	}

	var n notifier.Notifier = notifier.Noop{}
	if len(notifiers) > 0 {
		n = notifiers
	}
	notifyDispatcher := notifier.NewDispatcher(n, logger.Named("notifier"))
	defer notifyDispatcher.Close()

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	if err := routes.RegisterRoutes(r, routes.Deps{
		Config:      cfg,
		Log:         logger,
		Store:       store,
		DB:          db,
		States:      states,
		Locks:       locks,
		Interpreter: fallback,
		Sender:      sender,
		Audit:       auditDispatcher,
		Notify:      notifyDispatcher,
	}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-rootCtx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
