package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// File storage
	StorageRoot string

	// Upload limits
	AllowedExtensions []string // workout file extensions accepted as uploads and inside archives
	MaxFileSize       int64    // bytes, per workout file
	MaxArchiveSize    int64    // bytes, whole zip
	MaxArchiveFiles   int      // maximum entries per archive
	SyncImportLimit   int      // archives with at most this many files are processed inline

	// Statistics
	DefaultStoppedSpeedThreshold float64 // m/s
	SmoothSpeed                  bool    // rolling-mean interval speeds before classification

	// Value-limit ceilings; a computed metric above any of these fails the activity.
	MaxWorkoutDistanceKm float64
	MaxWorkoutDuration   time.Duration
	MaxWorkoutAscent     float64 // meters
	MaxWorkoutSpeed      float64 // km/h
	MaxElevation         float64 // meters

	// Text field limits
	MaxTitleLength       int
	MaxDescriptionLength int
	MaxNotesLength       int

	// External collaborators
	WeatherProvider string // "" disables weather lookup
	WeatherAPIKey   string
	ElevationURL    string // "" disables elevation enrichment
	RetryCount      int
	RetryDelay      time.Duration
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Port:      envString("PORT", ":8080"),
		DBPath:    envString("DB_PATH", "./data/workouts/workouts.db"),
		JWTSecret: envString("JWT_SECRET", "your-secret-key-change-in-production"),

		StorageRoot: envString("STORAGE_ROOT", "./data/workouts/uploads"),

		AllowedExtensions: strings.Split(envString("ALLOWED_EXTENSIONS", ".gpx,.fit,.tcx,.kml,.kmz"), ","),
		MaxFileSize:       envInt64("MAX_FILE_SIZE", 1024*1024*10),
		MaxArchiveSize:    envInt64("MAX_ARCHIVE_SIZE", 1024*1024*100),
		MaxArchiveFiles:   envInt("MAX_ARCHIVE_FILES", 50),
		SyncImportLimit:   envInt("SYNC_IMPORT_LIMIT", 10),

		DefaultStoppedSpeedThreshold: envFloat("STOPPED_SPEED_THRESHOLD", 0.28),
		SmoothSpeed:                  envBool("SMOOTH_SPEED", false),

		MaxWorkoutDistanceKm: envFloat("MAX_WORKOUT_DISTANCE_KM", 5000),
		MaxWorkoutDuration:   time.Duration(envInt64("MAX_WORKOUT_DURATION_HOURS", 24*7)) * time.Hour,
		MaxWorkoutAscent:     envFloat("MAX_WORKOUT_ASCENT", 50000),
		MaxWorkoutSpeed:      envFloat("MAX_WORKOUT_SPEED", 400),
		MaxElevation:         envFloat("MAX_ELEVATION", 9000),

		MaxTitleLength:       envInt("MAX_TITLE_LENGTH", 255),
		MaxDescriptionLength: envInt("MAX_DESCRIPTION_LENGTH", 10000),
		MaxNotesLength:       envInt("MAX_NOTES_LENGTH", 500),

		WeatherProvider: envString("WEATHER_PROVIDER", ""),
		WeatherAPIKey:   envString("WEATHER_API_KEY", ""),
		ElevationURL:    envString("ELEVATION_URL", ""),
		RetryCount:      envInt("EXTERNAL_RETRY_COUNT", 3),
		RetryDelay:      time.Duration(envInt64("EXTERNAL_RETRY_DELAY_MS", 500)) * time.Millisecond,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
