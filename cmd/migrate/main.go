package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go-occupational-backend/config"
	"go-occupational-backend/pkg/database"
	"go-occupational-backend/pkg/database/migrations"
	"go-occupational-backend/pkg/logger"
)

// migrate applies the embedded schema once and exits. Use -list to print the files instead.
func main() {
	list := flag.Bool("list", false, "print the migrations in execution order and exit")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	if *list {
		names, err := migrations.Files()
		if err != nil {
			log.Fatalf("list migrations: %v", err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.OpenSQL(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	start := time.Now()
	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	logger.Log.Info("migrations applied", "duration", time.Since(start))
}
