package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/logger"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/receipt"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	lg, closeLog, err := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	if n, err := tokens.PurgeExpired(ctx, time.Now().UTC()); err != nil {
		lg.Warn("purge refresh tokens", "err", err)
	} else if n > 0 {
		lg.Info("purged refresh tokens", "count", n)
	}
	accounts := service.NewAccounts(users, cfg.BcryptCost, lg)
	receipts := receipt.New(cfg.Receipt)
	bookings := &service.BookingService{
		Ledger:         service.NewLedger(repository.NewBookingRepo(db)),
		Receipts:       receipts,
		Events:         service.NewPublisher(cfg.AMQP),
		Log:            lg,
		MaxAdvanceDays: cfg.MaxAdvanceDays,
	}

	if cfg.AMQP.Enabled {
		consumer := &queue.Consumer{
			URL:     cfg.AMQP.URL,
			Queue:   cfg.AMQP.Queue,
			LogPath: "logs/booking.log",
			Logger:  lg,
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("booking event consumer stopped", "err", err)
			}
		}()
	}

	// Redis is optional; without it caching and rate limiting are off.
	var cache, limit echo.MiddlewareFunc
	if rdb := config.NewRedisClient(config.LoadRedisConfig()); rdb != nil {
		defer rdb.Close()
		if cc := config.LoadCacheConfig(); cc.Enabled {
			cache = middleware.NewRedisCache(cc, rdb)
		}
		if rc := config.LoadRateLimitConfig(); rc.Enabled {
			limit = middleware.NewTokenBucket(rc, rdb)
		}
	} else {
		lg.Warn("redis unavailable; cache and rate limit disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, accounts, tokens, lg), cfg.JWTSecret, limit)
	router.RegisterBooking(e, handler.NewBookingHandler(bookings, accounts, receipts, lg), cfg.JWTSecret, cache)

	addr := ":" + cfg.Port
	lg.Info("listening", "addr", addr, "env", cfg.Env)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", "err", err)
	}
}
