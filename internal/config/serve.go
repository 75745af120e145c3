package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServeConfig struct {
	Port             int
	Difficulty       int
	DataDir          string
	UploadDir        string
	Peers            []string
	SyncInterval     uint
	PeerTimeout      uint
	EnablePrometheus bool
	PrometheusAddr   string
}

func (c ServeConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Difficulty < 0 {
		return fmt.Errorf("difficulty must be non-negative, got %d", c.Difficulty)
	}
	if c.SyncInterval == 0 {
		return fmt.Errorf("sync interval must be at least 1 second")
	}
	return nil
}

func LoadServeConfigFromCLI() ServeConfig {
	return ServeConfig{
		Port:             viper.GetInt("port"),
		Difficulty:       viper.GetInt("difficulty"),
		DataDir:          viper.GetString("data-dir"),
		UploadDir:        viper.GetString("upload-dir"),
		Peers:            viper.GetStringSlice("peer"),
		SyncInterval:     viper.GetUint("sync-interval"),
		PeerTimeout:      viper.GetUint("peer-timeout"),
		EnablePrometheus: viper.GetBool("enable-prometheus"),
		PrometheusAddr:   viper.GetString("prometheus-addr"),
	}
}
