package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/parking-spot-reservation/internal/booking"
	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/database"
	"github.com/iliyamo/parking-spot-reservation/internal/handler"
	"github.com/iliyamo/parking-spot-reservation/internal/middleware"
	"github.com/iliyamo/parking-spot-reservation/internal/queue"
	"github.com/iliyamo/parking-spot-reservation/internal/repository"
	"github.com/iliyamo/parking-spot-reservation/internal/router"
	queuepublisher "github.com/iliyamo/parking-spot-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.BookingTZ)
	if err != nil {
		log.Fatalf("invalid BOOKING_TZ %q: %v", cfg.BookingTZ, err)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db, loc)
	engine := booking.New(booking.Config{
		Store:    store,
		Notifier: queuepublisher.QueueNotifier{},
		Rules: booking.Rules{
			Location:      loc,
			CutoverHour:   cfg.CutoverHour,
			LotteryWindow: cfg.LotteryWindow,
		},
		Seed: cfg.LotterySeed,
	})

	// Clear any state left over from cycles that ended while the
	// process was down, then arm the weekly reset.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if res, wl, err := engine.SweepStale(ctx); err != nil {
		log.Fatalf("startup sweep: %v", err)
	} else if res+wl > 0 {
		log.Printf("startup sweep cleared %d reservations, %d waitlist entries", res, wl)
	}
	cancel()
	scheduler := booking.NewResetScheduler(engine, nil)
	scheduler.Start()
	defer scheduler.Stop()

	// Notification consumer runs for the life of the process.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notify-consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	// Redis is optional: when unreachable, rate limiting and status
	// caching silently turn off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and status cache disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterBooking(e, handler.NewBookingHandler(engine), handler.NewReleaseHandler(engine), cfg.JWTSecret, limiter)
	router.RegisterStatus(e, handler.NewStatusHandler(engine), cfg.JWTSecret, limiter, cache)
	router.RegisterAdmin(e, handler.NewAdminHandler(engine), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, tz=%s, cutover=%02d:00 Fri, window=%s)",
		addr, cfg.Env, cfg.BookingTZ, cfg.CutoverHour, cfg.LotteryWindow)

	go func() {
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	// Shut down on SIGINT/SIGTERM.  Pending lottery buffers are flushed
	// first so requests collected during an open window are still drawn
	// rather than silently dropped.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	engine.Lottery().Flush()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
