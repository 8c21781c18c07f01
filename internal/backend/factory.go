package backend

import (
	"context"
	"fmt"
	"log/slog"

	applog "opsboard/internal/log"
	"opsboard/internal/settings"
	gsheet "opsboard/internal/sheets/google"
	"opsboard/internal/sheets/memory"
	"opsboard/internal/sheets/script"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger       *slog.Logger
	sheetsLogger *slog.Logger
}

// NewFactory creates a new backend factory. The data source clients it builds log
// under the sheets component.
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.Config{Handler: slog.Default().Handler()})
	}
	return &DefaultFactory{
		logger:       logger.WithComponent(applog.ComponentBackend).Logger,
		sheetsLogger: logger.WithComponent(applog.ComponentSheets).Logger,
	}
}

// CreateBackend builds the data source for one application generation from the
// endpoint read at startup.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config, endpoint settings.Endpoint) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Type.RequiresEndpoint() && !endpoint.Configured() {
		return nil, ErrUnconfigured
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config, endpoint)
	case ScriptBackend:
		return f.createScriptBackend(config, endpoint)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Using in-memory backend", "data_dir", config.DataDirectory)
	return &BackendResult{
		Source:  memory.NewFromFiles(config.DataDirectory),
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config, endpoint settings.Endpoint) (*BackendResult, error) {
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetRef:  endpoint.URL,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
		ComponentsTab:   config.ComponentsTab,
		ProjectsTab:     config.ProjectsTab,
		SuppliersTab:    config.SuppliersTab,
		Logger:          f.sheetsLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Using Google Sheets backend")
	return &BackendResult{
		Source:  client,
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createScriptBackend(config Config, endpoint settings.Endpoint) (*BackendResult, error) {
	client, err := script.New(script.Options{
		Endpoint:      endpoint.URL,
		Timeout:       config.FetchTimeout,
		Retries:       config.FetchRetries,
		ComponentsTab: config.ComponentsTab,
		ProjectsTab:   config.ProjectsTab,
		SuppliersTab:  config.SuppliersTab,
		Logger:        f.sheetsLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize script client: %w", err)
	}

	f.logger.Info("Using scripted endpoint backend")
	return &BackendResult{
		Source:  client,
		Cleanup: func() error { return nil },
	}, nil
}
