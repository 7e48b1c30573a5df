package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultThumbnailMaxSize = 300
	defaultListenAddr       = ":8080"
)

type Config struct {
	// http listen address
	ListenAddr string

	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // root for uploaded photos, thumbnails and avatars

	// thumbnail generation settings
	ThumbnailMaxSize int

	// face detection model paths (DNN)
	FaceDNNNetConfigPath string
	FaceDNNNetModelPath  string

	// face recognition model
	FaceRecModelPath string
	FaceRecModelName string

	// auth
	JWTSecret string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "photos.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	cfg := Config{
		ListenAddr:           getEnvOrDefault("LISTEN_ADDR", defaultListenAddr),
		DatabasePath:         dbPath,
		MediaStoragePath:     absMediaStorage,
		ThumbnailMaxSize:     getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),
		FaceDNNNetConfigPath: getEnvOrDefault("FACE_DNN_CONFIG_PATH", "./models/deploy.prototxt.txt"),
		FaceDNNNetModelPath:  getEnvOrDefault("FACE_DNN_MODEL_PATH", "./models/res10_300x300_ssd_iter_140000_fp16.caffemodel"),
		FaceRecModelPath:     getEnvOrDefault("FACE_REC_MODEL_PATH", ""),
		FaceRecModelName:     getEnvOrDefault("FACE_REC_MODEL_NAME", "arcface"),
		JWTSecret:            jwtSecret,
	}

	return cfg, nil
}
