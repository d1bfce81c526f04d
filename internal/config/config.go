package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DataDir        string `envconfig:"DATA_DIR" default:"./data/drawings"`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	OperatorUser   string `envconfig:"OPERATOR_USER" default:"admin"`
	OperatorHash   string `envconfig:"OPERATOR_PASSWORD_HASH"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	MDNSAdvertise  bool   `envconfig:"MDNS_ADVERTISE" default:"false"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	// Editor tuning.
	ViewMargin         float64 `envconfig:"VIEW_MARGIN" default:"20"`
	ZoomStep           float64 `envconfig:"ZOOM_STEP" default:"1.05"`
	HitTolerance       float64 `envconfig:"HIT_TOLERANCE" default:"10"`
	ScreenHitTolerance bool    `envconfig:"SCREEN_HIT_TOLERANCE" default:"false"`
	ExportWidth        int     `envconfig:"EXPORT_WIDTH" default:"1024"`
	ExportHeight       int     `envconfig:"EXPORT_HEIGHT" default:"768"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ViewMargin < 0 {
		return fmt.Errorf("VIEW_MARGIN must not be negative, got %v", c.ViewMargin)
	}
	if c.ZoomStep <= 1 {
		return fmt.Errorf("ZOOM_STEP must be greater than 1, got %v", c.ZoomStep)
	}
	if c.HitTolerance <= 0 {
		return fmt.Errorf("HIT_TOLERANCE must be positive, got %v", c.HitTolerance)
	}
	if c.ExportWidth <= 0 || c.ExportHeight <= 0 {
		return fmt.Errorf("export size must be positive, got %dx%d", c.ExportWidth, c.ExportHeight)
	}
	return nil
}

// Origins splits AllowedOrigins into its entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// OriginHosts strips the scheme from each origin, the form websocket
// origin patterns expect.
func (c *Config) OriginHosts() []string {
	origins := c.Origins()
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			o = host
		}
		out = append(out, o)
	}
	return out
}
