package bootstrap

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config 是所有服务共享的配置结构，从 yaml 文件加载，关键字段可用环境变量覆盖。
type Config struct {
	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Kafka struct {
			Brokers           string `yaml:"brokers"`
			NotificationTopic string `yaml:"notification_topic"`
			ConsumerGroup     string `yaml:"consumer_group"`
		} `yaml:"kafka"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Nacos struct {
			Enabled     bool   `yaml:"enabled"`
			ServerAddrs string `yaml:"server_addrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
		Renderer struct {
			URL string `yaml:"url"`
		} `yaml:"renderer"`
	} `yaml:"infra"`

	App struct {
		BackgroundWorkers int `yaml:"background_workers"`
		// Routing 是通知受众的路由规则，match 为 CEL 表达式，
		// audience 形如 "role:admin"。
		Routing []RoutingRule `yaml:"routing"`
	} `yaml:"app"`
}

type RoutingRule struct {
	Match    string `yaml:"match"`
	Audience string `yaml:"audience"`
}

var (
	currentConfig Config
	configOnce    sync.Once
)

// Init 加载配置，所有 main 在启动时最先调用。
func Init() {
	configOnce.Do(func() {
		path := getEnv("CONFIG_PATH", "configs/config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, &currentConfig); err != nil {
				panic(fmt.Sprintf("invalid config file %s: %v", path, err))
			}
		}
		applyDefaults(&currentConfig)
		applyEnvOverrides(&currentConfig)
	})
}

// GetCurrentConfig 返回进程内的配置快照。
func GetCurrentConfig() Config {
	return currentConfig
}

func applyDefaults(c *Config) {
	if c.Infra.Mysql.DSN == "" {
		c.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/bazaar?charset=utf8mb4&parseTime=True&loc=Local"
	}
	if c.Infra.Kafka.Brokers == "" {
		c.Infra.Kafka.Brokers = "localhost:9092"
	}
	if c.Infra.Kafka.NotificationTopic == "" {
		c.Infra.Kafka.NotificationTopic = "notifications"
	}
	if c.Infra.Kafka.ConsumerGroup == "" {
		c.Infra.Kafka.ConsumerGroup = "notification-group"
	}
	if c.Infra.Redis.Addrs == "" {
		c.Infra.Redis.Addrs = "localhost:6379"
	}
	if c.Infra.Jaeger.Endpoint == "" {
		c.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	}
	if c.Infra.Renderer.URL == "" {
		c.Infra.Renderer.URL = "http://localhost:9090/render"
	}
	if c.App.BackgroundWorkers == 0 {
		c.App.BackgroundWorkers = 16
	}
	if len(c.App.Routing) == 0 {
		c.App.Routing = []RoutingRule{
			{Match: `event == "order.placed"`, Audience: "role:admin"},
			{Match: `event == "order.status_changed" && actor_role != "admin" && terminal`, Audience: "role:admin"},
			{Match: `event == "order.reminder"`, Audience: "role:admin"},
		}
	}
}

func applyEnvOverrides(c *Config) {
	c.Infra.Mysql.DSN = getEnv("MYSQL_DSN", c.Infra.Mysql.DSN)
	c.Infra.Kafka.Brokers = getEnv("KAFKA_BROKERS", c.Infra.Kafka.Brokers)
	c.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", c.Infra.Redis.Addrs)
	c.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", c.Infra.Jaeger.Endpoint)
	c.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", c.Infra.Nacos.ServerAddrs)
	c.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", c.Infra.Nacos.Namespace)
	c.Infra.Nacos.Group = getEnv("NACOS_GROUP", c.Infra.Nacos.Group)
	c.Infra.Renderer.URL = getEnv("RENDER_SERVICE_URL", c.Infra.Renderer.URL)
}

// getEnv 从环境变量中读取配置，未设置时返回 fallback。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
