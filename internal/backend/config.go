package backend

import (
	"fmt"

	"opsboard/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		ComponentsTab: appConfig.ComponentsSheet,
		ProjectsTab:   appConfig.ProjectsSheet,
		SuppliersTab:  appConfig.SuppliersSheet,

		FetchTimeout: appConfig.FetchTimeout,
		FetchRetries: appConfig.FetchRetries,

		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,

		DataDirectory: appConfig.DataDir,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type %q (want one of %v)", c.Type, GetBackendTypes())
	}
	if c.Type.RequiresEndpoint() && (c.ComponentsTab == "" || c.ProjectsTab == "" || c.SuppliersTab == "") {
		return fmt.Errorf("tab names are required for %s backend", c.Type)
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SheetsBackend, ScriptBackend}
}
