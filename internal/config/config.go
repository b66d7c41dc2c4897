package config

import (
	"os"
	"strconv"
	"time"
)

// Config homemanager-allocation 配置
type Config struct {
	API struct {
		// BaseURL 物业后端 REST API 根地址
		BaseURL string
		// Timeout 单次请求超时（挂起的请求不允许无限阻塞编辑会话）
		Timeout time.Duration
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Offline struct {
		// Enabled 是否启用离线缓存与动作队列
		Enabled bool
		// ReplayInterval 回放进程扫描离线队列的间隔
		ReplayInterval time.Duration
	}
	Log struct {
		Level  string
		Format string
	}
}

func Load() *Config {
	cfg := &Config{}

	cfg.API.BaseURL = getEnv("API_BASE_URL", "http://localhost:8000/api")
	cfg.API.Timeout = time.Duration(parseInt(getEnv("API_TIMEOUT_SECONDS", "30"), 30)) * time.Second

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Offline.Enabled = getEnv("OFFLINE_ENABLED", "true") == "true"
	cfg.Offline.ReplayInterval = time.Duration(parseInt(getEnv("OFFLINE_REPLAY_INTERVAL", "60"), 60)) * time.Second

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
