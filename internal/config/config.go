package config

import "github.com/spf13/viper"

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	// DeviceKeyHash is the bcrypt hash of the shared device key used to obtain tokens.
	DeviceKeyHash string `mapstructure:"DEVICE_KEY_HASH"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	MaxTrackers   int    `mapstructure:"MAX_TRACKERS"`

	// Filter overrides; nil keeps the profile value, zero is a real value.
	AccuracyGateM  *float64 `mapstructure:"ACCURACY_GATE_M"`
	StaleAfterMs   *int64   `mapstructure:"STALE_AFTER_MS"`
	JitterFloorKmh *float64 `mapstructure:"JITTER_FLOOR_KMH"`
	WindowSize     *int     `mapstructure:"WINDOW_SIZE"`
	SpeedLimitKmh  *float64 `mapstructure:"SPEED_LIMIT_KMH"`
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("DEVICE_KEY_HASH", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("MAX_TRACKERS", 1000)
	v.SetDefault("ACCURACY_GATE_M", 10.0)
	v.SetDefault("STALE_AFTER_MS", 1500)
	v.SetDefault("JITTER_FLOOR_KMH", 0.3)
	v.SetDefault("WINDOW_SIZE", 7)
	v.SetDefault("SPEED_LIMIT_KMH", 110.0)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}
