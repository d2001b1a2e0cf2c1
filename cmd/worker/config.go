package main

import (
	"os"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"datahub-backend/internal/config"
)

// Config holds the worker settings. The worker only touches Redis and the
// local temp directory, so it does not open the database.
type Config struct {
	Redis   config.RedisConfig
	Export  config.ExportConfig
	TempDir string
	Env     string
}

func loadConfig() (*Config, error) {
	appCfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Redis:   appCfg.Redis,
		Export:  appCfg.Export,
		TempDir: os.TempDir(),
		Env:     appCfg.App.Environment,
	}

	log.Info().
		Str("redis", cfg.Redis.Host).
		Str("temp_dir", cfg.TempDir).
		Str("sweep_cron", cfg.Export.SweepCron).
		Msg("[Config] Worker configuration loaded")

	return cfg, nil
}

func (c *Config) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Redis.Host,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}
