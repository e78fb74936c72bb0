package config

// Chat definition chat_service YAML structure
type Chat struct {
	Port    string         `mapstructure:"port"`
	Mongo   DatabaseConfig `mapstructure:"mongo"`
	Redis   RedisConfig    `mapstructure:"redis"`
	UserDB  DatabaseConfig `mapstructure:"pg"`
	Preview PreviewConfig  `mapstructure:"preview"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// PreviewConfig definition link preview fetcher setting
type PreviewConfig struct {
	// TimeoutSeconds 單次 preview fetch 的上限，逾時直接放棄
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}
