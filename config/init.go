package config

import (
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	instance *Config
	once     sync.Once
)

// Init 加载配置：先读 config.yaml，再用环境变量覆盖
func Init() {
	Get()
}

// Get 获取全局配置实例（未显式 Init 时按默认值加载，方便测试）
func Get() *Config {
	once.Do(func() {
		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		setDefaults(v)

		// 配置文件可选，缺失时使用默认值 + 环境变量
		_ = v.ReadInConfig()

		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			panic(err)
		}
		if err := envconfig.Process("", cfg); err != nil {
			panic(err)
		}
		instance = cfg
	})
	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Host", "0.0.0.0")
	v.SetDefault("Port", "8080")
	v.SetDefault("Prefix", "api")
	v.SetDefault("Mode", string(ModeDebug))
	v.SetDefault("Mysql.Host", "127.0.0.1")
	v.SetDefault("Mysql.Port", "3306")
	v.SetDefault("JWT.AccessExpire", 72*3600)
	v.SetDefault("Log.Level", "info")
	v.SetDefault("Storage.home", "./upload")
	v.SetDefault("Storage.base_url", "/static")
	v.SetDefault("Activity.initial_status", "ongoing")
}
