package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"popbot-backend/internal/ai"
	"popbot-backend/internal/classify"
	"popbot-backend/internal/config"
	"popbot-backend/internal/db"
	"popbot-backend/internal/engine"
	"popbot-backend/internal/offers"
	"popbot-backend/internal/price"
	"popbot-backend/internal/server"
	"popbot-backend/internal/session"
	"popbot-backend/internal/transcribe"
	"popbot-backend/internal/transport"
)

func main() {
	cfg := config.Load()

	var persister session.Persister
	if cfg.DatabaseURL != "" {
		database, err := db.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		defer database.Close()
		if err := database.RunMigrations("./migrations"); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		log.Println("database connection established")
		persister = session.NewDatabasePersister(database)
	} else {
		log.Println("DB_URL not provided, using file-based session storage")
		persister = session.NewFilePersister(cfg.SessionFile)
	}
	store := session.NewStore(persister, cfg.SaveDebounce)

	classifier := classify.New(classify.LoadTables(cfg.DataDir))

	persona, err := ai.LoadPersona(cfg.PersonaFile)
	if err != nil {
		log.Printf("warning: failed to load persona from %s, using defaults: %v", cfg.PersonaFile, err)
		persona = ai.DefaultPersona()
	}
	completer := ai.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.Model, persona)

	transcriber := transcribe.NewFallback(
		transcribe.NewWhisper(cfg.WhisperScript),
		transcribe.NewAssemblyAI(cfg.AssemblyAIKey, cfg.AssemblyBaseURL),
	)

	gateway := transport.NewGateway(cfg.GatewayBaseURL, cfg.GatewayToken)

	eng := engine.New(engine.Deps{
		Store:       store,
		Classifier:  classifier,
		Completer:   completer,
		Persona:     persona,
		Transcriber: transcriber,
		Catalog:     price.NewClient(cfg.PriceAPIURL, cfg.PriceAPIToken, cfg.MerchantCNPJ),
		Archive:     offers.NewArchive(cfg.OffersDir),
		Transport:   gateway,
		AttendantID: cfg.AttendantID,
		TempDir:     cfg.TempDir,
	})

	srv := server.New(cfg, store, eng, gateway)
	httpServer := &http.Server{Addr: ":" + cfg.Port, Handler: srv.Router()}

	go func() {
		log.Printf("popbot server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := store.Flush(); err != nil {
		log.Printf("final session flush failed: %v", err)
	} else {
		log.Println("sessions flushed")
	}
}
