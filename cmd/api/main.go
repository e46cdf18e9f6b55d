package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"mentorhub/internal/config"
	"mentorhub/internal/database"
	"mentorhub/internal/lock"
	"mentorhub/internal/middleware"
	"mentorhub/internal/modules/booking"
	"mentorhub/internal/modules/settlement"
	"mentorhub/internal/modules/wallet"
	jwtsvc "mentorhub/internal/pkg/jwt"
	"mentorhub/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}
	if err := wallet.Migrate(db); err != nil {
		log.Fatal(err)
	}

	var locker lock.Locker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		locker = lock.NewRedisLocker(rdb, cfg.LockTTL)
	} else {
		log.Println("REDIS_ADDR not set, using in-process locks")
		locker = lock.NewMemoryLocker()
	}

	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	walletService := wallet.NewService(db)
	walletHandler := wallet.NewHandler(walletService)

	settlementService := settlement.NewService(
		paymentRepo,
		bookingRepo,
		bookingRepo,
		walletService,
		locker,
		cfg.CommissionRate,
		log.Printf,
	)
	settlementHandler := settlement.NewHandler(settlementService)

	bookingService := booking.NewService(
		bookingRepo,
		availabilityRepo,
		userRepo,
		settlementService,
		locker,
		log.Printf,
	)
	bookingHandler := booking.NewHandler(bookingService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		bookingHandler.RegisterPublicRoutes(v1)
		settlementHandler.RegisterWebhookRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			settlementHandler.RegisterRoutes(protected)

			mentorOnly := protected.Group("/")
			mentorOnly.Use(middleware.MentorOnly())
			walletHandler.RegisterRoutes(mentorOnly)
		}
	}

	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
