package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/sahilchouksey/noticeboard-api/config"
	"github.com/sahilchouksey/noticeboard-api/database"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	env, err := config.Get()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("Noticeboard - Database Seeding")
	fmt.Println(separator)

	if err := database.NewSeeder(store.GetDB()).SeedAll(env.ADMIN_EMAIL, env.ADMIN_PASSWORD); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Println(separator)
	fmt.Printf("Admin user %s is ready.\n", env.ADMIN_EMAIL)
	fmt.Println(separator)
}
