package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo      MongoConfig
	Redis      RedisConfig
	Cloudinary CloudinaryConfig
}

// MongoConfig intentionally carries no URI default: the connection manager
// fails fast on missing configuration instead of silently dialing localhost.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=imagevault"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
	// Channel is the pub/sub channel the render-cache layer subscribes to.
	Channel string `env:"REVALIDATE_CHANNEL, default=imagevault:revalidate"`
}

type CloudinaryConfig struct {
	URL string `env:"CLOUDINARY_URL"`
	// Folder scopes every provider-index search expression.
	Folder string `env:"CLOUDINARY_FOLDER, default=imagevault"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
