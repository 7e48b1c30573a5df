package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/drishyamitra/photobackend/config"
	"github.com/drishyamitra/photobackend/database"
	"github.com/drishyamitra/photobackend/handlers"
	"github.com/drishyamitra/photobackend/media"
	"github.com/drishyamitra/photobackend/recognition"
	"github.com/drishyamitra/photobackend/repository"
	"github.com/drishyamitra/photobackend/services"
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

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		log.Fatalf("FATAL: Failed to create database directory: %v", err)
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}

	detector := media.NewDNNFaceDetector(cfg.FaceDNNNetConfigPath, cfg.FaceDNNNetModelPath)
	defer detector.Close()
	embedder := media.NewDNNEmbedder(cfg.FaceRecModelPath, cfg.FaceRecModelName)
	defer embedder.Close()

	userRepo := repository.NewUserRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	faceRepo := repository.NewFaceRepository(db)
	personRepo := repository.NewPersonRepository(db)

	matcher := recognition.NewMatcher(faceRepo, recognition.DefaultThreshold)

	personService := services.NewPersonService(personRepo, faceRepo, photoRepo)
	duplicateService := services.NewDuplicateService(photoRepo, sqlDB)
	photoService := services.NewPhotoService(photoRepo, faceRepo, personService, duplicateService, mediaStore, cfg.ThumbnailMaxSize)
	recognitionService := services.NewRecognitionService(faceRepo, personService, detector, embedder, matcher)
	chatService := services.NewChatService(photoService, personService, duplicateService, faceRepo)

	jwtKey := []byte(cfg.JWTSecret)
	authHandler := handlers.NewAuthHandler(userRepo, jwtKey)
	photoHandler := handlers.NewPhotoHandler(photoService, recognitionService, duplicateService, mediaStore)
	faceHandler := handlers.NewFaceHandler(photoService, personService)
	personHandler := handlers.NewPersonHandler(personService)
	chatHandler := handlers.NewChatHandler(chatService)

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

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return handlers.AuthMiddleware(userRepo, jwtKey, next)
			})

			r.Get("/auth/me", authHandler.CurrentUser)

			r.Route("/photos", func(r chi.Router) {
				r.Post("/", photoHandler.Upload)
				r.Get("/", photoHandler.List)
				r.Post("/batch_delete", photoHandler.DeleteBatch)
				r.Get("/duplicates", photoHandler.ListDuplicates)
				r.Get("/duplicates/purge_plan", photoHandler.StageDuplicatePurge)
				r.Get("/stats", photoHandler.Stats)
				r.Get("/tags", photoHandler.ListTags)
				r.Route("/{photoID}", func(r chi.Router) {
					r.Get("/", photoHandler.Get)
					r.Delete("/", photoHandler.Delete)
					r.Get("/file", photoHandler.ServeFile)
					r.Put("/favorite", photoHandler.ToggleFavorite)
					r.Get("/faces", faceHandler.ListByPhoto)
				})
			})

			r.Route("/faces/{faceID}", func(r chi.Router) {
				r.Put("/person", faceHandler.AssignPerson)
				r.Delete("/person", faceHandler.UnassignPerson)
			})

			r.Route("/people", func(r chi.Router) {
				r.Get("/", personHandler.List)
				r.Route("/{personID}", func(r chi.Router) {
					r.Get("/photos", personHandler.Photos)
					r.Put("/", personHandler.Rename)
					r.Delete("/", personHandler.Delete)
				})
			})

			r.Post("/chat", chatHandler.Execute)
		})
	})

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing media in: %s", cfg.MediaStoragePath)
	log.Printf("Server listening on %s", cfg.ListenAddr)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
