package main

import (
	"context"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/mq"
	"bazaar/internal/pkg/redis"
	"bazaar/internal/pkg/session"
	notifapp "bazaar/internal/service/notification/application"
	notifinfra "bazaar/internal/service/notification/infrastructure"
	notifadapter "bazaar/internal/service/notification/infrastructure/adapter"
	"bazaar/internal/service/notification/infrastructure/rule"
	notifhttp "bazaar/internal/service/notification/interfaces"
)

const (
	serviceName = "notification-worker"
	servicePort = 8081
)

func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	routingRules := make([]rule.RoutingRule, 0, len(cfg.App.Routing))
	for _, r := range cfg.App.Routing {
		routingRules = append(routingRules, rule.RoutingRule{Match: r.Match, Audience: r.Audience})
	}
	policy, err := rule.NewCELRoutingPolicy(routingRules)
	if err != nil {
		log.Fatalf("failed to compile routing rules: %v", err)
	}

	sessions := session.NewManager(redisClient)
	dispatcher := notifapp.NewDispatcher(
		notifinfra.NewGormNotificationRepository(db),
		notifinfra.NewGormUserDirectory(db),
		notifinfra.NewGormDeviceTokenRegistry(db),
		notifadapter.NewPushRedisAdapter(redisClient, sessions),
		policy,
		otel.Tracer(serviceName),
	)

	brokers := strings.Split(cfg.Infra.Kafka.Brokers, ",")
	reader := mq.NewKafkaReader(brokers, cfg.Infra.Kafka.NotificationTopic, cfg.Infra.Kafka.ConsumerGroup)
	consumer := notifinfra.NewNotificationConsumerAdapter(reader, dispatcher)

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	consumer.Start(consumerCtx)

	handler := notifhttp.NewNotificationHandler(dispatcher)
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			cancelConsumer()
			consumer.Stop()
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing redis client: %v", err)
			}
		},
	})
}
