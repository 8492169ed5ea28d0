package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/ssenyonga-git/docsysbackend/config"
	"github.com/ssenyonga-git/docsysbackend/database"
	"github.com/ssenyonga-git/docsysbackend/handlers"
	"github.com/ssenyonga-git/docsysbackend/intake"
	"github.com/ssenyonga-git/docsysbackend/pdfgen"
	"github.com/ssenyonga-git/docsysbackend/repository"
	"github.com/ssenyonga-git/docsysbackend/storage"
	"github.com/ssenyonga-git/docsysbackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.ClientStoragePath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	store, err := storage.NewLocalStore(cfg.ClientStoragePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize client file store: %v", err)
	}

	clientRepo := repository.NewClientRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	userRepo := repository.NewUserRepository(db)

	encoder := pdfgen.NewEncoder(cfg.BrandName)
	compiler := pdfgen.NewCompiler(store, cfg.BrandName)
	pipeline := intake.NewProcessor(store, docRepo, clientRepo, encoder, compiler)

	log.Printf("Initializing portfolio worker pool (Workers: %d, Queue Size: %d)...", cfg.NumPortfolioWorkers, cfg.PortfolioQueueSize)
	portfolioGen := workers.NewPortfolioProcessor(clientRepo, pipeline, cfg.PortfolioQueueSize, cfg.NumPortfolioWorkers)
	defer portfolioGen.Stop()

	log.Printf("Storing client files in: %s", cfg.ClientStoragePath)
	log.Printf("Using database: %s", cfg.DatabasePath)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	clientHandler := &handlers.ClientHandler{
		Clients:      clientRepo,
		Docs:         docRepo,
		Users:        userRepo,
		Store:        store,
		Pipeline:     pipeline,
		PortfolioGen: portfolioGen,
	}
	documentHandler := &handlers.DocumentHandler{Docs: docRepo, Store: store}
	viewerHandler := &handlers.ViewerHandler{Clients: clientRepo, Docs: docRepo, Store: store, Pipeline: pipeline}

	r.Route("/api", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Post("/", clientHandler.CreateClient)
			r.Get("/", clientHandler.ListClients)
			r.Post("/quick", clientHandler.QuickCreateClient)
			r.Route("/{client_id}", func(r chi.Router) {
				r.Get("/", clientHandler.GetClient)
				r.Delete("/", clientHandler.DeleteClient)
				r.Post("/documents", clientHandler.UploadDocuments)
				r.Get("/portfolio", clientHandler.DownloadPortfolio)
				r.Post("/portfolio", clientHandler.RequestPortfolioGeneration)
				r.Get("/summary", clientHandler.DownloadSummary)
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/{document_id}/download", documentHandler.DownloadDocument)
		})

		r.Route("/viewer", func(r chi.Router) {
			r.Get("/search", viewerHandler.Search)
			r.Get("/passport/{passport_number}", viewerHandler.GetByPassport)
			r.Get("/clients/{client_id}", viewerHandler.GetClient)
			r.Get("/clients/{client_id}/portfolio", viewerHandler.DownloadPortfolio)
			r.Get("/documents/{document_id}/download", documentHandler.DownloadDocument)
		})

		r.Get("/files/*", handlers.ClientFileServer(cfg.ClientStoragePath))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
