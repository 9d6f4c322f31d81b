package app

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/api"
	"github.com/sahilchouksey/noticeboard-api/config"
	"github.com/sahilchouksey/noticeboard-api/database"
	"github.com/sahilchouksey/noticeboard-api/router"
	"github.com/sahilchouksey/noticeboard-api/services"
	"github.com/sahilchouksey/noticeboard-api/services/storage"
	"github.com/sahilchouksey/noticeboard-api/utils/auth"
	"github.com/sahilchouksey/noticeboard-api/utils/kvstore"
	"github.com/sahilchouksey/noticeboard-api/utils/middleware"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM(getEnv)
	if err != nil {
		print("Check whether the database is running or not\n")
		print("For a local run without Postgres set DB_DRIVER=sqlite\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	deps, cleanup := BuildDependencies(getEnv)

	// Defer Closing DB and optional clients
	defer func() {
		cleanup()
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), getEnv.IsDevelopment())

	// Setup Routes
	router.SetupRoutes(server.GetEngine(), store, deps)

	return server.Run()
}

// BuildDependencies creates the route collaborators from env. Optional
// services that are unset or unreachable are left nil with a warning.
func BuildDependencies(env *config.EnvironmentVariable) (router.Dependencies, func()) {
	deps := router.Dependencies{
		JWTManager: auth.NewJWTManager(auth.JWTConfig{
			Secret: env.JWT_SECRET,
			Expiry: env.JWT_EXPIRY,
			Issuer: env.JWT_ISSUER,
		}),
		DefaultPassword: env.DEFAULT_PASSWORD,
		SecureCookies:   !env.IsDevelopment(),
		Security:        middleware.NewSecurityConfig(env.ALLOWED_ORIGINS, env.RATE_LIMIT_REQUESTS, env.RATE_LIMIT_WINDOW),
	}
	cleanup := func() {}

	if env.REDIS_URL != "" {
		redisStore, err := kvstore.NewRedisStore(env.REDIS_URL)
		if err != nil {
			log.Warnf("Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
		} else {
			deps.BruteForceProtection = middleware.NewBruteForceProtection(redisStore)
			cleanup = func() { _ = redisStore.Close() }
		}
	} else {
		log.Warn("REDIS_URL not set, brute force protection disabled")
	}

	if env.ROSTER_BUCKET != "" {
		archive, err := storage.NewRosterArchive(storage.Config{
			AccessKey: env.SPACES_ACCESS_KEY,
			SecretKey: env.SPACES_SECRET_KEY,
			Bucket:    env.ROSTER_BUCKET,
			Region:    env.SPACES_REGION,
			Endpoint:  env.SPACES_ENDPOINT,
		})
		if err != nil {
			log.Warnf("Roster archive disabled: %v", err)
		} else {
			deps.RosterArchiver = archive
		}
	}

	mailer := services.NewEmailService(services.EmailConfig{
		Host:     env.SMTP_HOST,
		Port:     env.SMTP_PORT,
		Username: env.SMTP_USERNAME,
		Password: env.SMTP_PASSWORD,
		From:     env.SMTP_FROM,
	})
	if mailer.IsConfigured() {
		deps.Mailer = mailer
	}

	if env.DEFAULT_PASSWORD == "" {
		log.Warn("DEFAULT_PASSWORD not set, bulk instructor import will be rejected")
	}

	return deps, cleanup
}
