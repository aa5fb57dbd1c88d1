package main

import (
	"context"
	"log"

	"jobmetrics/adapters/sqlstore"
	"jobmetrics/app"
	"jobmetrics/internal"
	"jobmetrics/internal/api"
	"jobmetrics/internal/config"
	"jobmetrics/ports"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	var runs ports.RunRepository
	if appConfig.Database.Enabled() {
		db, err := sqlstore.Open(context.Background(), appConfig.Database.Driver, appConfig.Database.URL)
		if err != nil {
			log.Fatalf("Failed to initialize run store: %v", err)
		}
		defer db.Close()
		runs = sqlstore.NewRunRepository(db)
		log.Printf("Run store enabled (%s)", appConfig.Database.Driver)
	} else {
		log.Println("No DATABASE_URL configured, runs will not be stored")
	}

	var cache *app.ReportCache
	if appConfig.Pipeline.CacheEnabled {
		cache = app.NewReportCache(appConfig.Pipeline.CacheSize)
	}

	server := api.NewServer(app.NewReportService(runs, cache), appConfig.Server.MaxUploadSize)

	log.Printf("Starting jobmetrics server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
