// Package config loads the server/client configuration via viper, in the
// teacher's style (per-field mapstructure tags, AutomaticEnv with a "."→"_"
// replacer) but flattened into one struct — this module runs as a single
// binary, not the teacher's per-service microservice fleet.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete runtime configuration for either the server or the
// client binary; both share one file/env namespace and ignore the sections
// that don't apply to them.
type Config struct {
	ID      string  `mapstructure:"id"`
	Online  bool    `mapstructure:"online"`
	Log     Log     `mapstructure:"log"`
	Server  Server  `mapstructure:"server"`
	Mongo   Mongo   `mapstructure:"mongo"`
	Admin   Admin   `mapstructure:"admin"`
}

// Log mirrors the teacher's LogConf (level + output path).
type Log struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Server holds the listening address and the round-log directory.
type Server struct {
	Port    int    `mapstructure:"port"`
	LogDir  string `mapstructure:"logDir"`
}

// Mongo mirrors the teacher's MongoConf; Url empty disables match history.
type Mongo struct {
	Url         string `mapstructure:"url"`
	Db          string `mapstructure:"db"`
	MinPoolSize int    `mapstructure:"minPoolSize"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

// Admin holds the gRPC admin surface and statsviz listen addresses.
type Admin struct {
	GrpcAddr     string `mapstructure:"grpcAddr"`
	StatsvizAddr string `mapstructure:"statsvizAddr"`
}

// Defaults, applied before any config file/env override is read.
func defaults() Config {
	return Config{
		Log:    Log{Level: "info"},
		Server: Server{Port: 10000, LogDir: "logs"},
		Admin:  Admin{GrpcAddr: "", StatsvizAddr: ""},
	}
}

// Load reads configFile (if non-empty) through viper, then layers
// environment variables on top (RIICHI_SERVER_PORT, RIICHI_LOG_LEVEL, …),
// following the teacher's AutomaticEnv + SetEnvKeyReplacer pattern.
func Load(configFile string) (Config, error) {
	cfg := defaults()

	v := viper.New()
	v.SetEnvPrefix("riichi")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Unmarshal only consults the environment for keys viper knows about, so
	// register every key with its default.
	for key, val := range map[string]any{
		"id": cfg.ID, "online": cfg.Online,
		"log.level": cfg.Log.Level, "log.path": cfg.Log.Path,
		"server.port": cfg.Server.Port, "server.logDir": cfg.Server.LogDir,
		"mongo.url": cfg.Mongo.Url, "mongo.db": cfg.Mongo.Db,
		"mongo.minPoolSize": cfg.Mongo.MinPoolSize, "mongo.maxPoolSize": cfg.Mongo.MaxPoolSize,
		"admin.grpcAddr": cfg.Admin.GrpcAddr, "admin.statsvizAddr": cfg.Admin.StatsvizAddr,
	} {
		v.SetDefault(key, val)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
