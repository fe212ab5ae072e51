package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Storage    string `yaml:"storage" env:"STORAGE" env-default:"redis"`
	Redis      Redis  `yaml:"redis"`
	NATS       NATS   `yaml:"nats"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`

	// RoomTTL expires rooms left behind by a crashed server. Zero disables it.
	RoomTTL time.Duration `yaml:"room-ttl" env:"REDIS_ROOM_TTL" env-default:"24h"`
}

// NATS is optional; with an empty URL events stay on this server.
type NATS struct {
	URL     string `yaml:"url" env:"NATS_URL" env-default:""`
	Subject string `yaml:"subject" env:"NATS_SUBJECT" env-default:"gobang.events"`
}

// Game holds the board size used when a client does not ask for one.
type Game struct {
	Rows    int `yaml:"rows" env:"GAME_ROWS" env-default:"15"`
	Columns int `yaml:"columns" env:"GAME_COLUMNS" env-default:"15"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
