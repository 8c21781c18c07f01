package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"opsboard/internal/core"
	ports "opsboard/internal/sheets"
)

// Ensure interface conformance
var _ ports.Source = (*Client)(nil)

var (
	ErrNoSpreadsheet = errors.New("spreadsheet reference not configured")
	ErrNoCredentials = errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")

	spreadsheetURL = regexp.MustCompile(`/spreadsheets/d/([A-Za-z0-9_-]+)`)
	bareID         = regexp.MustCompile(`^[A-Za-z0-9_-]{20,}$`)
)

type Options struct {
	// SpreadsheetRef is the registry endpoint: a spreadsheet URL or a bare ID.
	SpreadsheetRef  string
	CredentialsJSON string
	CredentialsFile string
	ComponentsTab   string
	ProjectsTab     string
	SuppliersTab    string
	Logger          *slog.Logger
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	componentsTab string
	projectsTab   string
	suppliersTab  string
}

// ParseSpreadsheetID extracts the spreadsheet ID from a docs.google.com URL, or accepts
// a bare ID.
func ParseSpreadsheetID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNoSpreadsheet
	}
	if m := spreadsheetURL.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if bareID.MatchString(ref) {
		return ref, nil
	}
	return "", fmt.Errorf("not a spreadsheet URL or ID: %q", ref)
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	id, err := ParseSpreadsheetID(opts.SpreadsheetRef)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	credentialsJSON, err := loadCredentials(ctx, logger, opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", id)
	return newWithService(svc, id, opts), nil
}

func newWithService(svc *gsheet.Service, id string, opts Options) *Client {
	tab := func(v, def string) string {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
		return def
	}
	return &Client{
		svc:           svc,
		spreadsheetID: id,
		componentsTab: tab(opts.ComponentsTab, ports.ComponentsSheet),
		projectsTab:   tab(opts.ProjectsTab, ports.ProjectsSheet),
		suppliersTab:  tab(opts.SuppliersTab, ports.SuppliersSheet),
	}
}

func loadCredentials(ctx context.Context, logger *slog.Logger, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		logger.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		logger.DebugContext(ctx, "Reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, ErrNoCredentials
	}
}

func (c *Client) ListComponents(ctx context.Context) ([]core.Component, error) {
	values, err := c.readTab(ctx, c.componentsTab)
	if err != nil {
		return nil, err
	}
	return parseComponents(values), nil
}

func (c *Client) ListProjects(ctx context.Context) ([]core.Project, error) {
	values, err := c.readTab(ctx, c.projectsTab)
	if err != nil {
		return nil, err
	}
	return parseProjects(values), nil
}

func (c *Client) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	values, err := c.readTab(ctx, c.suppliersTab)
	if err != nil {
		return nil, err
	}
	return parseSuppliers(values), nil
}

func (c *Client) readTab(ctx context.Context, tab string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := tabRange(tab)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// tabRange quotes the tab name so names with spaces or apostrophes stay valid A1 notation.
func tabRange(tab string) string {
	return fmt.Sprintf("'%s'!A:Z", strings.ReplaceAll(tab, "'", "''"))
}
