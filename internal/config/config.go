package config

import (
	"log"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

/*
把init config跟read config分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取 需要使用讀寫鎖
*/
var configSingleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServerPort      string `mapstructure:"SERVER_PORT"`
	DbName          string `mapstructure:"POSTGRES_DB"`
	DbHost          string `mapstructure:"POSTGRES_HOST"`
	DbPort          string `mapstructure:"POSTGRES_PORT"`
	DbUser          string `mapstructure:"POSTGRES_USER"`
	DbPas           string `mapstructure:"POSTGRES_PASSWORD"`
	DbSSLMode       string `mapstructure:"POSTGRES_SSLMODE"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`
	SheetWebhookURL string `mapstructure:"SHEET_WEBHOOK_URL"`
	// 計價預設值，下單請求未帶參數時使用
	DiscountPercent string `mapstructure:"DISCOUNT_PERCENT"`
	DeliveryFee     string `mapstructure:"DELIVERY_FEE"`
}

// KafkaBrokerList 逗號分隔的broker清單
func (c *Config) KafkaBrokerList() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	brokers := strings.Split(c.KafkaBrokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	if configSingleton == nil {
		muonce.Do(func() {
			configSingleton = &ConfigSingleTon{}
			if cf, err := loadConfig(); err == nil {
				configSingleton.Config = cf
			} else {
				log.Fatal("error read config")
			}
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				if cf, err := loadConfig(); err == nil {
					configSingleton.mu.Lock()
					configSingleton.Config = cf
					configSingleton.mu.Unlock()
				} else {
					log.Panic("failed to reload config file")
				}
			})
		})
	}
}

/*
單純回傳錯誤 由外部決定要不要Fatal, 畢竟有可能有替代方案
*/
func loadConfig() (cf *Config, err error) {
	cf = &Config{}
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("POSTGRES_DB", "storefront")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("KAFKA_ORDER_TOPIC", "storefront.orders")
	viper.SetDefault("DISCOUNT_PERCENT", "20")
	viper.SetDefault("DELIVERY_FEE", "15")

	// .env 不存在時走環境變數與預設值
	_ = viper.ReadInConfig()

	err = viper.Unmarshal(cf)
	return
}
