package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"` // empty disables result/report persistence
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"` // empty disables cross-instance code reservation
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // hours
}

// GameConfig tunes the room timers. Zero values use the room defaults
// (60s grace, 10m expiry, 2.5s reveal, 1-2s bot pause).
type GameConfig struct {
	GraceTimeout time.Duration `mapstructure:"graceTimeout"`
	RoomExpiry   time.Duration `mapstructure:"roomExpiry"`
	RevealDelay  time.Duration `mapstructure:"revealDelay"`
	BotDelayMin  time.Duration `mapstructure:"botDelayMin"`
	BotDelayMax  time.Duration `mapstructure:"botDelayMax"`
}

var GlobalConfig *Config

func LoadConfig(path string) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	GlobalConfig = &cfg
}
