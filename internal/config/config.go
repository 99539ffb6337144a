package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix          = "LIBRARY"
	defaultHTTPAddress = "0.0.0.0:3000"
	defaultDatabase    = "library.db"
	defaultLogLevel    = "info"
	defaultCookieName  = "authToken"
	defaultPDFDir      = "public/pdfs"
	defaultStaticDir   = "public"
)

// AppConfig captures runtime configuration for the library server.
type AppConfig struct {
	HTTPAddress       string
	DatabasePath      string
	SessionCookieName string
	PDFDir            string
	StaticDir         string
	LogLevel          string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabase)
	configViper.SetDefault("session.cookie_name", defaultCookieName)
	configViper.SetDefault("pdf.dir", defaultPDFDir)
	configViper.SetDefault("static.dir", defaultStaticDir)
	configViper.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:       configViper.GetString("http.address"),
		DatabasePath:      configViper.GetString("database.path"),
		SessionCookieName: configViper.GetString("session.cookie_name"),
		PDFDir:            configViper.GetString("pdf.dir"),
		StaticDir:         configViper.GetString("static.dir"),
		LogLevel:          configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.SessionCookieName) == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if strings.TrimSpace(c.PDFDir) == "" {
		return fmt.Errorf("pdf.dir is required")
	}
	return nil
}
