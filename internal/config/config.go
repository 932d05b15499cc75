package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Paths     PathsConfig
	Tools     ToolsConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PathsConfig struct {
	TempDir   string
	AssetsDir string
	PublicDir string
}

type ToolsConfig struct {
	YtdlpPath  string
	FFmpegPath string
}

type CacheConfig struct {
	SearchTTLHours int
}

type AnalyticsConfig struct {
	DBPath string
}

type RateLimitConfig struct {
	GeneratePerHour int
}

type WorkerConfig struct {
	Concurrency int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()
	_ = viper.BindEnv("tools.ytdlp_path", "YTDLP_PATH")
	_ = viper.BindEnv("tools.ffmpeg_path", "FFMPEG_PATH")
	_ = viper.BindEnv("server.port", "PORT")

	// Defaults
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("paths.temp_dir", "./temp")
	viper.SetDefault("paths.assets_dir", "./assets")
	viper.SetDefault("paths.public_dir", "./public")
	viper.SetDefault("tools.ytdlp_path", "yt-dlp")
	viper.SetDefault("tools.ffmpeg_path", "ffmpeg")
	viper.SetDefault("cache.search_ttl_hours", 24)
	viper.SetDefault("analytics.db_path", "./analytics.db")
	viper.SetDefault("ratelimit.generate_per_hour", 20)
	viper.SetDefault("worker.concurrency", 4)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Paths: PathsConfig{
			TempDir:   viper.GetString("paths.temp_dir"),
			AssetsDir: viper.GetString("paths.assets_dir"),
			PublicDir: viper.GetString("paths.public_dir"),
		},
		Tools: ToolsConfig{
			YtdlpPath:  viper.GetString("tools.ytdlp_path"),
			FFmpegPath: viper.GetString("tools.ffmpeg_path"),
		},
		Cache: CacheConfig{
			SearchTTLHours: viper.GetInt("cache.search_ttl_hours"),
		},
		Analytics: AnalyticsConfig{
			DBPath: viper.GetString("analytics.db_path"),
		},
		RateLimit: RateLimitConfig{
			GeneratePerHour: viper.GetInt("ratelimit.generate_per_hour"),
		},
		Worker: WorkerConfig{
			Concurrency: viper.GetInt("worker.concurrency"),
		},
	}

	return cfg, nil
}
