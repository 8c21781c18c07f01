package backend

import (
	"context"
	"errors"
	"time"

	"opsboard/internal/settings"
	"opsboard/internal/sheets"
)

// ErrUnconfigured is returned when the backend needs an endpoint and none is stored.
var ErrUnconfigured = errors.New("backend endpoint not configured")

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the data source and optional cleanup function
type BackendResult struct {
	Source  sheets.Source
	Cleanup CleanupFunc
}

// Factory creates data sources for one application generation.
type Factory interface {
	CreateBackend(ctx context.Context, config Config, endpoint settings.Endpoint) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Tab names shared by the sheets and script backends
	ComponentsTab string
	ProjectsTab   string
	SuppliersTab  string

	// Script specific
	FetchTimeout time.Duration
	FetchRetries int

	// Google Sheets specific
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SheetsBackend BackendType = "sheets"
	ScriptBackend BackendType = "script"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SheetsBackend, ScriptBackend:
		return true
	default:
		return false
	}
}

// RequiresEndpoint reports whether the backend reads its location from the settings
// registry.
func (bt BackendType) RequiresEndpoint() bool {
	return bt == SheetsBackend || bt == ScriptBackend
}
