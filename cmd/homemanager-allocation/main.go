package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homemanager-allocation/internal/config"
	"homemanager-allocation/internal/logger"
	"homemanager-allocation/internal/service"
	"homemanager-allocation/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 离线队列回放进程：周期性扫描 redis 里的离线动作队列，
// 把连接恢复后积压的分配族动作回放到物业后端。
func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "homemanager-allocation")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting homemanager-allocation replay worker",
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.Duration("replay_interval", cfg.Offline.ReplayInterval),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}

	kv := store.NewRedisKV(redisClient)
	cache := store.NewSnapshotCache(kv)
	client := service.NewPropertyClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	queue := service.NewOfflineQueue(kv, log)

	// 回放进程本身运行在有连接的环境里；离线判定属于移动端 UI
	net := service.NewNetworkState()

	svc := service.NewAllocationService(client, cache, queue, net, log)
	replayer := service.NewReplayer(queue, svc, net, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Offline.ReplayInterval)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigChan:
			log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
			return
		case <-ticker.C:
			replayCtx, replayCancel := context.WithTimeout(ctx, cfg.Offline.ReplayInterval)
			if err := replayer.Replay(replayCtx); err != nil {
				log.Error("Offline queue replay failed", zap.Error(err))
			}
			replayCancel()
		}
	}
}
