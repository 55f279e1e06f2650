package config

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avrouter"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates router daemon configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// ValidateConfig validates a router daemon configuration.
func ValidateConfig(config *Config) error {
	v := NewValidator()
	return v.Validate(config)
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *Config) error {
	v.errors = make(ValidationErrors, 0)

	if config == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateListeners(config)
	v.validateLog(&config.Log)
	v.validateTracing(&config.Tracing)
	v.validateLimits(config.Limits)
	v.validateTimeout(config.Timeout)
	v.validateRoutes(config.Routes)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// validateListeners validates the route and admin listen addresses.
func (v *Validator) validateListeners(config *Config) {
	if err := util.ValidateListenAddress(config.Listen.Address); err != nil {
		v.addError("listen.address", err.Error())
	}
	if err := util.ValidateListenAddress(config.Admin.Address); err != nil {
		v.addError("admin.address", err.Error())
	}
	if config.Listen.Address != "" && config.Listen.Address == config.Admin.Address {
		v.addError("admin.address", "admin address must differ from listen address")
	}

	for _, d := range []struct {
		path  string
		value Duration
	}{
		{"listen.readTimeout", config.Listen.ReadTimeout},
		{"listen.writeTimeout", config.Listen.WriteTimeout},
		{"listen.idleTimeout", config.Listen.IdleTimeout},
	} {
		if err := util.ValidateDuration(d.value.Duration()); err != nil {
			v.addError(d.path, err.Error())
		}
	}
}

// validateLog validates the logging section.
func (v *Validator) validateLog(log *LogConfig) {
	switch log.Level {
	case "debug", "info", "warn", "error":
	default:
		v.addError("log.level", fmt.Sprintf("level must be debug, info, warn, or error, got: %s", log.Level))
	}

	switch log.Format {
	case "json", "console":
	default:
		v.addError("log.format", fmt.Sprintf("format must be json or console, got: %s", log.Format))
	}

	switch log.Output {
	case "stdout", "stderr":
	default:
		v.addError("log.output", fmt.Sprintf("output must be stdout or stderr, got: %s", log.Output))
	}
}

// validateTracing validates the tracing section.
func (v *Validator) validateTracing(tracing *TracingConfig) {
	if !tracing.Enabled {
		return
	}

	if tracing.Endpoint == "" {
		v.addError("tracing.endpoint", "endpoint is required when tracing is enabled")
	}
	if tracing.ServiceName == "" {
		v.addError("tracing.serviceName", "serviceName is required when tracing is enabled")
	}
	if tracing.SampleRate < 0 || tracing.SampleRate > 1 {
		v.addError("tracing.sampleRate",
			fmt.Sprintf("sampleRate must be between 0 and 1, got: %g", tracing.SampleRate))
	}
}

// validateLimits validates the rate limiting section.
func (v *Validator) validateLimits(limits *LimitsConfig) {
	if limits == nil {
		return
	}

	if limits.RPS < 0 {
		v.addError("limits.rps", fmt.Sprintf("rps cannot be negative, got: %d", limits.RPS))
	}
	if limits.RPS > 0 && limits.Burst < 1 {
		v.addError("limits.burst", fmt.Sprintf("burst must be at least 1, got: %d", limits.Burst))
	}

	for i, proxy := range limits.TrustedProxies {
		if _, _, err := net.ParseCIDR(proxy); err == nil {
			continue
		}
		if ip := net.ParseIP(proxy); ip != nil {
			continue
		}
		v.addError(fmt.Sprintf("limits.trustedProxies[%d]", i),
			fmt.Sprintf("not a valid IP or CIDR: %s", proxy))
	}
}

// validateTimeout validates the request timeout.
func (v *Validator) validateTimeout(timeout Duration) {
	if err := util.ValidateDuration(timeout.Duration()); err != nil {
		v.addError("timeout", err.Error())
	}
}

// validateRoutes validates the route table, registering every route
// against a throwaway dispatcher so malformed patterns and duplicate
// method and path combinations are caught here rather than at reload
// time.
func (v *Validator) validateRoutes(routes []RouteConfig) {
	probe := avrouter.New(avrouter.WithMetrics(false))
	noop := avrouter.HandlerFunc(func(http.ResponseWriter, *http.Request, avrouter.Params) {})

	names := make(map[string]int)

	for i, route := range routes {
		path := fmt.Sprintf("routes[%d]", i)

		if route.Name != "" {
			if prev, ok := names[route.Name]; ok {
				v.addError(path+".name",
					fmt.Sprintf("duplicate route name %q, first used by routes[%d]", route.Name, prev))
			} else {
				names[route.Name] = i
			}
		}

		if err := util.ValidateHTTPMethod(route.Method); err != nil {
			v.addError(path+".method", err.Error())
			continue
		}
		if route.Path == "" {
			v.addError(path+".path", "path is required")
			continue
		}

		switch {
		case route.Response == nil && !route.Echo:
			v.addError(path, "route must have a response or echo enabled")
		case route.Response != nil && route.Echo:
			v.addError(path, "response and echo are mutually exclusive")
		}

		if route.Response != nil && route.Response.Status != 0 {
			if err := util.ValidateHTTPStatusCode(route.Response.Status); err != nil {
				v.addError(path+".response.status", err.Error())
			}
		}

		if err := probe.Handle(route.Method, route.Path, noop); err != nil {
			v.addError(path+".path", err.Error())
		}
	}
}

// addError appends a validation error.
func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}
