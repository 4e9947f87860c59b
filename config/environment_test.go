package config

import "testing"

func TestAppEnvironmentDefault(t *testing.T) {
	t.Setenv("APP_ENV", "")
	if env := AppEnvironment(); env != EnvironmentDevelopment {
		t.Fatalf("AppEnvironment = %q, want development", env)
	}
}

func TestAppEnvironmentAlias(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	if env := AppEnvironment(); env != EnvironmentProduction {
		t.Fatalf("AppEnvironment = %q, want production", env)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	if got := ResolveConfigPath(""); got != "config/config.production.yml" {
		t.Fatalf("ResolveConfigPath = %q", got)
	}

	// explicit non-default paths are respected
	if got := ResolveConfigPath("custom.yml"); got != "custom.yml" {
		t.Fatalf("ResolveConfigPath = %q", got)
	}
}

func TestIsProductionLike(t *testing.T) {
	if !IsProductionLike(EnvironmentProduction) || !IsProductionLike(EnvironmentStaging) {
		t.Fatal("production and staging must be production-like")
	}
	if IsProductionLike(EnvironmentDevelopment) {
		t.Fatal("development must not be production-like")
	}
}
