package config

import (
	"errors"

	"github.com/leslieo2/go-user-demo/internal/constants"
)

// AppConfig configures the view and its data provider.
type AppConfig struct {
	Title string `json:"title" yaml:"title"`
	// Seed makes generated ids and uptimes reproducible. Zero uses a secure source.
	Seed int64 `json:"seed" yaml:"seed"`
	// SettleAll keeps the loading flag set until every initial request has settled.
	SettleAll bool `json:"settle_all" yaml:"settle_all"`
}

// DefaultAppConfig returns the default view configuration
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Title: constants.DefaultTitle,
	}
}

// Validate validates the app configuration
func (a AppConfig) Validate() error {
	if a.Title == "" {
		return errors.New("title cannot be empty")
	}
	return nil
}
