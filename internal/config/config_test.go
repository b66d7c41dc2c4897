package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg := Load()

	// 检查默认值
	if cfg.API.BaseURL != "http://localhost:8000/api" {
		t.Errorf("Expected API_BASE_URL default 'http://localhost:8000/api', got '%s'", cfg.API.BaseURL)
	}

	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("Expected API_TIMEOUT_SECONDS default 30s, got %v", cfg.API.Timeout)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Expected REDIS_ADDR default 'localhost:6379', got '%s'", cfg.Redis.Addr)
	}

	if cfg.Redis.DB != 0 {
		t.Errorf("Expected REDIS_DB default 0, got %d", cfg.Redis.DB)
	}

	if !cfg.Offline.Enabled {
		t.Error("Expected OFFLINE_ENABLED default true")
	}

	if cfg.Offline.ReplayInterval != 60*time.Second {
		t.Errorf("Expected OFFLINE_REPLAY_INTERVAL default 60s, got %v", cfg.Offline.ReplayInterval)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}

	if cfg.Log.Format != "json" {
		t.Errorf("Expected LOG_FORMAT default 'json', got '%s'", cfg.Log.Format)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// 设置环境变量
	os.Setenv("API_BASE_URL", "https://api.example.com/v1")
	os.Setenv("API_TIMEOUT_SECONDS", "10")
	os.Setenv("REDIS_ADDR", "redis:6379")
	os.Setenv("REDIS_DB", "2")
	os.Setenv("OFFLINE_ENABLED", "false")
	os.Setenv("OFFLINE_REPLAY_INTERVAL", "15")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg := Load()

	if cfg.API.BaseURL != "https://api.example.com/v1" {
		t.Errorf("Expected API_BASE_URL 'https://api.example.com/v1', got '%s'", cfg.API.BaseURL)
	}

	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("Expected API timeout 10s, got %v", cfg.API.Timeout)
	}

	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Expected REDIS_ADDR 'redis:6379', got '%s'", cfg.Redis.Addr)
	}

	if cfg.Redis.DB != 2 {
		t.Errorf("Expected REDIS_DB 2, got %d", cfg.Redis.DB)
	}

	if cfg.Offline.Enabled {
		t.Error("Expected OFFLINE_ENABLED false")
	}

	if cfg.Offline.ReplayInterval != 15*time.Second {
		t.Errorf("Expected replay interval 15s, got %v", cfg.Offline.ReplayInterval)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected LOG_LEVEL 'debug', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("API_TIMEOUT_SECONDS", "not-a-number")
	defer os.Clearenv()

	cfg := Load()

	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("Expected fallback timeout 30s, got %v", cfg.API.Timeout)
	}
}
