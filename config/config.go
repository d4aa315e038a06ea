package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name string `mapstructure:"NAME"`
		Port string `mapstructure:"PORT"`
	}

	Cors struct {
		AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`
	}

	Websocket struct {
		MaxConnections   int `mapstructure:"MAX_CONNECTIONS"`
		ConnectionsPerIP int `mapstructure:"CONNECTIONS_PER_IP"`
	}
}

var Conf *AppConfig

func LoadConfig() error {
	viper.SetConfigName("application")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("ANONCHAT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("App.NAME", "anonchat")
	viper.SetDefault("App.PORT", ":5002")
	viper.SetDefault("Cors.ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("Websocket.MAX_CONNECTIONS", 10000)
	viper.SetDefault("Websocket.CONNECTIONS_PER_IP", 20)

	if err := viper.ReadInConfig(); err != nil {
		// Rooms are ephemeral and the defaults are complete, a missing
		// config file is not an error.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	Conf = &config
	log.Info().Str("app", config.App.Name).Msg("configuration loaded...")
	return nil
}
