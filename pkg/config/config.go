package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Game   GameConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

// GameConfig 遊戲規則相關的設定
type GameConfig struct {
	MaxPoints  int `mapstructure:"max_points"`  // 搶先達到此分數的玩家結束遊戲
	RoundLimit int `mapstructure:"round_limit"` // 回合數上限
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")

	// 預設值，讓沒有配置文件時也能啟動
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.user", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.name", "minority_game")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("game.max_points", 5)
	viper.SetDefault("game.round_limit", 10)

	viper.AutomaticEnv()

	// 配置文件是可選的，找不到時使用預設值
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
