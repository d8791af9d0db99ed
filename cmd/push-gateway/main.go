package main

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/redis"
	"bazaar/internal/pkg/session"
	"bazaar/internal/service/push/gateway"
)

const (
	serviceName = "push-gateway"
	servicePort = 8088
)

func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	// 每个节点一个随机 ID，会话路由用它定位用户连到了哪个节点
	nodeID := serviceName + "-" + uuid.NewString()[:8]
	sessions := session.NewManager(redisClient)

	hub := gateway.NewHub()
	go hub.Run()

	subscriber := gateway.NewSubscriber(redisClient, hub, nodeID)
	subCtx, cancelSub := context.WithCancel(context.Background())
	go subscriber.Run(subCtx)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				gateway.ServeWs(hub, sessions, nodeID, w, r)
			})
		},
		OnShutdown: func(ctx context.Context) {
			cancelSub()
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing redis client: %v", err)
			}
		},
	})
}
