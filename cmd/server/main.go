package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/stores_api/internal/config"
	"github.com/Skotchmaster/stores_api/internal/es"
	"github.com/Skotchmaster/stores_api/internal/handlers"
	"github.com/Skotchmaster/stores_api/internal/logging"
	"github.com/Skotchmaster/stores_api/internal/mail"
	loggingmw "github.com/Skotchmaster/stores_api/internal/middleware/logging"
	"github.com/Skotchmaster/stores_api/internal/mykafka"
	"github.com/Skotchmaster/stores_api/internal/repo"
	"github.com/Skotchmaster/stores_api/internal/service/search"
	"github.com/Skotchmaster/stores_api/internal/tokens"
	httpserver "github.com/Skotchmaster/stores_api/internal/transport/http"
)

const mailEndpoint = "https://smtp.maileroo.com/send"

func main() {
	configuration, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := configuration.InitDB()
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("Ошибка подключения к Elasticsearch: %v", err)
	}

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	r := repo.New(db)
	issuer := &tokens.Issuer{
		Secret:     []byte(configuration.JWT_SECRET),
		AccessTTL:  configuration.AccessTTL,
		RefreshTTL: configuration.RefreshTTL,
		Blocklist:  r,
	}
	mailer := mail.NewAPIMailer(mailEndpoint, configuration.MAILER_API_KEY, configuration.MAILER_FROM)
	index := &search.Index{ES: esClient, Name: "items"}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Issuer: issuer,
		AuthHandler: &handlers.AuthHandler{
			Repo:     r,
			Issuer:   issuer,
			Producer: prod,
			Mailer:   mailer,
			ResetTTL: configuration.ResetTTL,
			ResetURL: configuration.FrontendResetURL,
		},
		StoreHandler: &handlers.StoreHandler{DB: db},
		ItemHandler:  &handlers.ItemHandler{DB: db, Producer: prod, Index: index},
		TagHandler:   &handlers.TagHandler{DB: db},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
