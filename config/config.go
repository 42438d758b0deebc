package config

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

type Config struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Prefix   string `envconfig:"PREFIX"`
	Mode     Mode   `envconfig:"MODE"`
	Storage  Storage
	Mysql    Mysql
	Redis    Redis
	JWT      JWT
	Log      Log `mapstructure:"Log"`
	Sentry   Sentry
	S3       S3
	Activity Activity
	Notify   Notify
}

type Storage struct {
	Home    string `envconfig:"STORAGE_HOME" mapstructure:"home"`
	BaseURL string `envconfig:"STORAGE_BASE_URL" mapstructure:"base_url"` // 本地存储的静态访问前缀
}

type S3 struct {
	Endpoint        string `mapstructure:"endpoint"`
	BaseURL         string `mapstructure:"base_url"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_key"`
	Prefix          string `mapstructure:"prefix"`
	UsePathStyle    bool   `mapstructure:"path_style"`
}

type Mysql struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	DBName   string `envconfig:"DB_NAME"`
}

type Redis struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWT struct {
	AccessSecret string `envconfig:"ACCESS_SECRET"`
	AccessExpire int64  `envconfig:"ACCESS_EXPIRE"`
}

type Log struct {
	FilePath   string `envconfig:"LOG_FILE_PATH" mapstructure:"file_path"`     // 日志文件路径
	Level      string `envconfig:"LOG_LEVEL" mapstructure:"level"`             // 日志级别：debug, info, warn, error
	MaxSize    int    `envconfig:"LOG_MAX_SIZE" mapstructure:"max_size"`       // 日志文件最大大小（MB）
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge     int    `envconfig:"LOG_MAX_AGE" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `envconfig:"LOG_COMPRESS" mapstructure:"compress"`       // 是否压缩旧日志文件
}

type Sentry struct {
	Dsn              string  `envconfig:"SENTRY_DSN" mapstructure:"dsn"`
	TracesSampleRate float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE" mapstructure:"traces_sample_rate"`
}

// Activity 活动模块的可配置行为
type Activity struct {
	// InitialStatus 新建活动的初始状态，draft 或 ongoing
	InitialStatus string `envconfig:"ACTIVITY_INITIAL_STATUS" mapstructure:"initial_status"`
}

type Notify struct {
	// WebhookURL 活动结算完成后的回调地址，为空则不通知
	WebhookURL string `envconfig:"NOTIFY_WEBHOOK_URL" mapstructure:"webhook_url"`
}
