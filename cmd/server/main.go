package main // Entry point package

import (
	"context"      // startup deadlines
	"database/sql" // optional account database
	"errors"       // seed duplicate detection
	"log"          // Logging library
	"time"         // startup timeouts

	"github.com/joho/godotenv"                      // .env loading for local runs
	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // stock recover / request id / logger
	"github.com/redis/go-redis/v9"                  // optional Redis

	"github.com/iliyamo/parking-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/parking-reservation/internal/database"   // MySQL connection and schema
	"github.com/iliyamo/parking-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/parking-reservation/internal/jobs"       // cron sweeper
	"github.com/iliyamo/parking-reservation/internal/middleware" // rate limiter and cache
	"github.com/iliyamo/parking-reservation/internal/model"      // roles and users
	"github.com/iliyamo/parking-reservation/internal/queue"      // reservation events
	"github.com/iliyamo/parking-reservation/internal/repository" // stores
	"github.com/iliyamo/parking-reservation/internal/router"     // Internal router setup
	"github.com/iliyamo/parking-reservation/internal/service"    // reservation lifecycle
	"github.com/iliyamo/parking-reservation/internal/utils"      // password hashing
)

func main() {
	_ = godotenv.Load()  // a missing .env is fine; real deployments use the environment
	cfg := config.Load() // Load environment config

	catalog, err := config.LoadCatalog(cfg.LotsFile)
	if err != nil {
		log.Fatalf("lot catalog: %v", err)
	}

	var db *sql.DB
	if cfg.DBEnabled {
		db, err = database.Open(cfg)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = database.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("database schema: %v", err)
		}
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	users, tokens := pickStores(db, rdb)
	seedUsers(users, cfg)

	var events service.EventPublisher = queue.Noop{}
	if cfg.QueueEnabled {
		events = queue.NewPublisher(cfg.RabbitURL)
		if cfg.QueueConsumer {
			go queue.StartConsumer(cfg.RabbitURL, "logs")
		}
	}

	svc := service.NewReservationService(
		repository.NewLotRepo(catalog.Lots, catalog.Locations, catalog.DefaultLocation),
		repository.NewReservationRepo(),
		users,
		service.Options{Location: cfg.Location, PendingTTL: cfg.PendingTTL, Events: events},
	)

	sweeper, err := jobs.NewSweeper(svc, cfg.SweepSchedule)
	if err != nil {
		log.Fatal(err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	lotH := handler.NewLotHandler(svc)
	resH := handler.NewReservationHandler(svc)
	router.RegisterRoutes(e, &handler.HealthHandler{DB: db, Redis: rdb}) // Register application routes
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, lotH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterReservations(e, lotH, resH, cfg.JWTSecret)
	router.RegisterAdmin(e, resH, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}

// pickStores chooses account and refresh token storage from what is
// reachable: MySQL first, then Redis for tokens, then process memory.
func pickStores(db *sql.DB, rdb *redis.Client) (repository.UserStore, repository.TokenStore) {
	if db != nil {
		return repository.NewUserRepo(db), repository.NewTokenRepo(db)
	}
	users := repository.NewMemoryUserRepo()
	if rdb != nil {
		return users, repository.NewRedisTokenRepo(rdb, "parking:refresh")
	}
	return users, repository.NewMemoryTokenRepo()
}

// seedUsers creates the configured demo accounts.  Existing accounts are
// left untouched so restarts against MySQL keep their points.
func seedUsers(users repository.UserStore, cfg config.Config) {
	ctx := context.Background()
	for _, su := range cfg.SeedUsers {
		hash, err := utils.HashPassword(su.Password, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("seed %s: %v", su.Username, err)
		}
		u := model.User{
			Username:     repository.NormalizeUsername(su.Username),
			PasswordHash: hash,
			Role:         su.Role,
			Points:       su.Points,
		}
		if err := users.Create(ctx, u); err != nil && !errors.Is(err, repository.ErrUsernameExists) {
			log.Fatalf("seed %s: %v", su.Username, err)
		}
	}
}
