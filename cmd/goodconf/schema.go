package main

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// DemoConfig is the sample service configuration.
type DemoConfig struct {
	Debug    bool         `toml:"debug" desc:"Enable debug output"`
	Database string       `toml:"database" required:"true" desc:"Database connection URL" validate:"url"`
	Secret   string       `toml:"secret" required:"true" desc:"Key used to sign session cookies" validate:"min=16"`
	Workers  []string     `toml:"workers" desc:"Queues processed by this instance"`
	Server   ServerConfig `toml:"server" desc:"HTTP listener"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `toml:"host" default:"localhost" desc:"Interface to bind"`
	Port    int           `toml:"port" default:"8080" desc:"TCP port" validate:"min=1,max=65535"`
	Timeout time.Duration `toml:"timeout" default:"30s" desc:"Request timeout"`
	Origins []string      `toml:"origins" desc:"Allowed CORS origins"`
}

func (DemoConfig) ConfigDescription() string {
	return "Configuration for the goodconf demo service"
}

// randomSecret fills the secret of generated templates.
func randomSecret() any {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
