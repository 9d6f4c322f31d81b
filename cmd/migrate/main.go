// Command migrate applies the schema and checks the connection.
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"log"

	"github.com/sahilchouksey/noticeboard-api/config"
	"github.com/sahilchouksey/noticeboard-api/database"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatal("Failed to load environment variables:", err)
	}

	env, err := config.Get()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	if env.DB_DRIVER != "sqlite" {
		if err := database.Preflight(context.Background(), env); err != nil {
			log.Fatal(err)
		}
	}

	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if err := store.HealthCheck(); err != nil {
		log.Fatal("Database health check failed:", err)
	}

	log.Printf("Migrations applied to %s database", env.DB_DRIVER)
	for _, table := range []string{"users", "courses", "course_instructors", "notices", "notice_views", "responses", "roster_imports"} {
		log.Println("  -", table)
	}
}
