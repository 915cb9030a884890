package bootstrap

import (
	"errors"
	"testing"
	"time"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// =============================================================================
// FromEnv
// =============================================================================

func TestFromEnv_EmptyEnvironmentUsesDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.ServiceRef != "app:app" {
		t.Errorf("ServiceRef = %q, want app:app", cfg.ServiceRef)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Host != "" {
		t.Errorf("Host = %q, want wildcard", cfg.Host)
	}
	if cfg.ShutdownGrace != 30*time.Second {
		t.Errorf("ShutdownGrace = %v, want 30s", cfg.ShutdownGrace)
	}
}

func TestFromEnv_ValidValues(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"APP_MODULE":     "melody:api",
		"PORT":           "9000",
		"HOST":           "127.0.0.1",
		"SHUTDOWN_GRACE": "5s",
	}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.ServiceRef != "melody:api" {
		t.Errorf("ServiceRef = %q, want melody:api", cfg.ServiceRef)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want 127.0.0.1", cfg.Host)
	}
	if cfg.ShutdownGrace != 5*time.Second {
		t.Errorf("ShutdownGrace = %v, want 5s", cfg.ShutdownGrace)
	}
}

func TestFromEnv_InvalidPort(t *testing.T) {
	cases := []struct {
		name string
		port string
	}{
		{"zero", "0"},
		{"negative", "-1"},
		{"too large", "65536"},
		{"not a number", "eighty"},
		{"float", "80.80"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(map[string]string{"PORT": tc.port}))
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("FromEnv(PORT=%q) error = %v, want ConfigurationError", tc.port, err)
			}
			if cfgErr.Name != "PORT" {
				t.Errorf("ConfigurationError.Name = %q, want PORT", cfgErr.Name)
			}
		})
	}
}

func TestFromEnv_PortBoundaries(t *testing.T) {
	for _, port := range []string{"1", "65535"} {
		if _, err := FromEnv(lookupFrom(map[string]string{"PORT": port})); err != nil {
			t.Errorf("FromEnv(PORT=%q) error = %v, want nil", port, err)
		}
	}
}

func TestFromEnv_MalformedServiceRef(t *testing.T) {
	for _, ref := range []string{"service", ":app", "app:", "a:b:c"} {
		_, err := FromEnv(lookupFrom(map[string]string{"APP_MODULE": ref}))
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("FromEnv(APP_MODULE=%q) error = %v, want ConfigurationError", ref, err)
		}
	}
}

func TestFromEnv_InvalidShutdownGrace(t *testing.T) {
	for _, grace := range []string{"soon", "-5s", "0s"} {
		_, err := FromEnv(lookupFrom(map[string]string{"SHUTDOWN_GRACE": grace}))
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("FromEnv(SHUTDOWN_GRACE=%q) error = %v, want ConfigurationError", grace, err)
		}
	}
}

// =============================================================================
// ParseServiceRef
// =============================================================================

func TestParseServiceRef(t *testing.T) {
	ref, err := ParseServiceRef("melody:api")
	if err != nil {
		t.Fatalf("ParseServiceRef() error = %v", err)
	}
	if ref.Module != "melody" || ref.Attribute != "api" {
		t.Errorf("ParseServiceRef() = %+v, want melody/api", ref)
	}
	if ref.String() != "melody:api" {
		t.Errorf("String() = %q, want melody:api", ref.String())
	}
}

func TestParseServiceRef_Malformed(t *testing.T) {
	for _, s := range []string{"", "service", ":", "app:", ":app", "a:b:c"} {
		if _, err := ParseServiceRef(s); err == nil {
			t.Errorf("ParseServiceRef(%q) error = nil, want ConfigurationError", s)
		}
	}
}

func TestConfigAddr(t *testing.T) {
	cfg := Config{Host: "", Port: 8080}
	if got := cfg.Addr(); got != ":8080" {
		t.Errorf("Addr() = %q, want :8080", got)
	}
	cfg = Config{Host: "127.0.0.1", Port: 9000}
	if got := cfg.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9000", got)
	}
}
