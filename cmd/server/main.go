package main // Entry point package

import (
    "context"
    "fmt"
    "os"
    "os/signal"
    "sync"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "go.uber.org/zap"

    "github.com/lakshmi-kamath/BookMySpace/internal/config"
    "github.com/lakshmi-kamath/BookMySpace/internal/database"
    "github.com/lakshmi-kamath/BookMySpace/internal/handler"
    "github.com/lakshmi-kamath/BookMySpace/internal/queue"
    "github.com/lakshmi-kamath/BookMySpace/internal/repository"
    "github.com/lakshmi-kamath/BookMySpace/internal/router"
    "github.com/lakshmi-kamath/BookMySpace/internal/service"
    "github.com/lakshmi-kamath/BookMySpace/internal/utils"
)

func main() {
    _ = godotenv.Load() // .env is optional; real env vars win
    cfg := config.Load()

    log, err := config.NewLogger(cfg)
    if err != nil {
        panic(err)
    }
    if err := run(cfg, log); err != nil {
        log.Error("server stopped", zap.Error(err))
        _ = log.Sync()
        os.Exit(1)
    }
    _ = log.Sync()
}

// run wires the application and blocks until a signal arrives or the
// listener fails.  Every resource it opens is closed before it returns.
func run(cfg config.Config, log *zap.Logger) error {
    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        return fmt.Errorf("database unavailable: %w", err)
    }
    defer db.Close()
    if cfg.DBMigrate {
        ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
        err := database.Migrate(ctx, db)
        cancel()
        if err != nil {
            return fmt.Errorf("migration failed: %w", err)
        }
        log.Info("migrations applied")
    }

    rdb := config.NewRedisClient(config.LoadRedisConfig())
    if rdb == nil {
        log.Warn("redis unavailable: rate limiting and report cache disabled")
    } else {
        defer rdb.Close()
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()
    // workers stop only after the HTTP server has drained
    workerCtx, stopWorkers := context.WithCancel(context.Background())
    var workers sync.WaitGroup
    defer func() {
        stopWorkers()
        workers.Wait()
    }()

    opts := []service.Option{
        service.WithLogger(log),
        service.WithLocation(cfg.Location),
        service.WithPaymentTimeout(cfg.PaymentTimeout),
        service.WithTxTimeout(cfg.TxTimeout),
    }
    if cfg.RabbitURL != "" {
        pub := queue.NewPublisher(cfg.RabbitURL, 1024, log)
        cons := queue.NewConsumer(cfg.RabbitURL, cfg.BookingLog, log)
        opts = append(opts, service.WithEvents(pub))
        workers.Add(2)
        go func() { defer workers.Done(); _ = pub.Run(workerCtx) }()
        go func() { defer workers.Done(); _ = cons.Run(workerCtx) }()
    } else {
        log.Info("RABBITMQ_URL not set: booking events disabled")
    }

    tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
    users := repository.NewUserRepo(db)
    store := repository.NewBookingStore(db)
    bookings := service.NewBookingService(store, service.NewSimulator(cfg.PaymentSuccessRate), opts...)
    accounts := service.NewAccountService(store, log)

    e := router.New(log)
    guards := router.NewGuards(tokens, rdb, config.LoadRateLimitConfig(), config.LoadCacheConfig(), log)
    bookingHandler := handler.NewBookingHandler(bookings, log)

    router.RegisterRoutes(e, db)
    router.RegisterAuth(e,
        handler.NewAuthHandler(users, tokens, cfg.BcryptCost, log),
        handler.NewProfileHandler(users, cfg.BcryptCost, log),
        guards,
    )
    router.RegisterBookings(e, bookingHandler, guards)
    router.RegisterAdmin(e, router.AdminHandlers{
        Users:    handler.NewUsersHandler(users, accounts, log),
        Venues:   handler.NewVenueHandler(repository.NewVenueRepo(db), log),
        Reports:  handler.NewReportHandler(repository.NewReportRepo(db), log),
        Bookings: bookingHandler,
    }, guards)

    log.Info("starting", zap.String("env", cfg.Env))
    return router.Serve(ctx, e, ":"+cfg.Port, 10*time.Second, log)
}
