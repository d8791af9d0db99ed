package main

import (
	"context"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/mq"
	"bazaar/internal/pkg/redis"
	"bazaar/internal/pkg/session"
	"bazaar/internal/pkg/task"
	orderapp "bazaar/internal/service/order/application"
	orderinfra "bazaar/internal/service/order/infrastructure"
	orderadapter "bazaar/internal/service/order/infrastructure/adapter"
	orderhttp "bazaar/internal/service/order/interfaces"
	pricingapp "bazaar/internal/service/pricing/application"
	pricinginfra "bazaar/internal/service/pricing/infrastructure"
)

const (
	serviceName = "order-service"
	servicePort = 8080
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

	brokers := strings.Split(cfg.Infra.Kafka.Brokers, ",")
	notificationWriter := mq.NewKafkaWriter(brokers, cfg.Infra.Kafka.NotificationTopic)

	tracer := otel.Tracer(serviceName)
	executor := task.NewExecutor(cfg.App.BackgroundWorkers)
	sessions := session.NewManager(redisClient)

	// 定价服务跟订单服务同进程部署，通过本地适配器接入
	pricingSvc := pricingapp.NewPricingService(pricinginfra.NewGormRuleRepository(db))

	ledger := orderinfra.NewInventoryLedger(db)
	orderRepo := orderinfra.NewGormOrderRepository(db, ledger)
	appSvc := orderapp.NewOrderApplicationService(
		orderRepo,
		orderadapter.NewCatalogGormAdapter(db),
		orderadapter.NewPricingLocalAdapter(pricingSvc),
		orderadapter.NewNotificationKafkaAdapter(notificationWriter),
		orderadapter.NewRenderHTTPAdapter(httpclient.NewClient(tracer), cfg.Infra.Renderer.URL),
		orderadapter.NewRealtimeRedisAdapter(redisClient, sessions),
		executor,
		tracer,
	)
	handler := orderhttp.NewOrderHandler(appSvc)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			// 先等后台任务（通知、发票）排空，再关外部连接
			executor.Shutdown()
			if err := notificationWriter.Close(); err != nil {
				log.Printf("Error closing kafka writer: %v", err)
			}
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing redis client: %v", err)
			}
		},
	})
}
