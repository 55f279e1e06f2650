package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	// DefaultListenAddress is the default address for the route server.
	DefaultListenAddress = ":8080"

	// DefaultAdminAddress is the default address for the admin server.
	DefaultAdminAddress = ":9090"

	// DefaultShutdownTimeout is the default graceful shutdown timeout.
	DefaultShutdownTimeout = 15 * time.Second

	// DefaultTracingSampleRate is the default trace sampling rate.
	DefaultTracingSampleRate = 0.1

	// DefaultServiceName is the default service name for tracing.
	DefaultServiceName = "routerd"
)

// Config holds the full router daemon configuration.
type Config struct {
	Listen  ListenConfig  `yaml:"listen" json:"listen"`
	Admin   AdminConfig   `yaml:"admin" json:"admin"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
	Limits  *LimitsConfig `yaml:"limits,omitempty" json:"limits,omitempty"`
	Timeout Duration      `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Routes  []RouteConfig `yaml:"routes" json:"routes"`
}

// ListenConfig configures the route server listener.
type ListenConfig struct {
	Address string `yaml:"address" json:"address"`

	ReadTimeout  Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`
	IdleTimeout  Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`
}

// AdminConfig configures the admin server listener serving metrics,
// health, and route introspection endpoints.
type AdminConfig struct {
	Address string `yaml:"address" json:"address"`
}

// LogConfig configures the daemon logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig configures Prometheus metrics exposure.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	Endpoint    string  `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	ServiceName string  `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
	SampleRate  float64 `yaml:"sampleRate,omitempty" json:"sampleRate,omitempty"`
}

// LimitsConfig configures request rate limiting.
type LimitsConfig struct {
	RPS            int      `yaml:"rps" json:"rps"`
	Burst          int      `yaml:"burst,omitempty" json:"burst,omitempty"`
	PerClient      bool     `yaml:"perClient,omitempty" json:"perClient,omitempty"`
	TrustedProxies []string `yaml:"trustedProxies,omitempty" json:"trustedProxies,omitempty"`
}

// RouteConfig declares a single route in the routing table.
type RouteConfig struct {
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	Method string `yaml:"method" json:"method"`
	Path   string `yaml:"path" json:"path"`

	// Response serves a fixed response, with {param} placeholders
	// expanded from the matched path parameters.
	Response *ResponseConfig `yaml:"response,omitempty" json:"response,omitempty"`

	// Echo serves a JSON reflection of the matched request instead of
	// a fixed response.
	Echo bool `yaml:"echo,omitempty" json:"echo,omitempty"`
}

// ResponseConfig describes a fixed response for a route.
type ResponseConfig struct {
	Status      int    `yaml:"status,omitempty" json:"status,omitempty"`
	Body        string `yaml:"body,omitempty" json:"body,omitempty"`
	ContentType string `yaml:"contentType,omitempty" json:"contentType,omitempty"`
}

// DefaultConfig returns a configuration populated with default values.
// Loading merges the YAML document over these defaults, so absent keys
// keep them.
func DefaultConfig() *Config {
	return &Config{
		Listen: ListenConfig{
			Address: DefaultListenAddress,
		},
		Admin: AdminConfig{
			Address: DefaultAdminAddress,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: DefaultServiceName,
			SampleRate:  DefaultTracingSampleRate,
		},
	}
}

// SetDefaults fills empty optional fields after parsing.
func (c *Config) SetDefaults() {
	if c.Listen.Address == "" {
		c.Listen.Address = DefaultListenAddress
	}
	if c.Admin.Address == "" {
		c.Admin.Address = DefaultAdminAddress
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = DefaultServiceName
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = DefaultTracingSampleRate
	}
	if c.Limits != nil && c.Limits.Burst == 0 {
		c.Limits.Burst = c.Limits.RPS
	}

	for i := range c.Routes {
		if c.Routes[i].Name == "" {
			c.Routes[i].Name = fmt.Sprintf("%s %s", c.Routes[i].Method, c.Routes[i].Path)
		}
		if c.Routes[i].Response != nil {
			if c.Routes[i].Response.Status == 0 {
				c.Routes[i].Response.Status = 200
			}
			if c.Routes[i].Response.ContentType == "" {
				c.Routes[i].Response.ContentType = "text/plain; charset=utf-8"
			}
		}
	}
}
