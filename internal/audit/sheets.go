package audit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type SheetsConfig struct {
	SpreadsheetID string
	TabPrefix     string

	// Either a service account email + PEM key, or a full credentials JSON document.
	ServiceAccountEmail string
	PrivateKey          string
	CredentialsJSON     []byte
}

// SheetsSink appends audit rows to a monthly tab ({prefix}{YYYY}_{MM}),
// creating the tab with a header row the first time a month is seen.
type SheetsSink struct {
	svc           *sheets.Service
	spreadsheetID string
	prefix        string

	mu   sync.Mutex
	tabs map[string]bool
}

func NewSheetsSink(ctx context.Context, cfg SheetsConfig) (*SheetsSink, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets spreadsheet id is required")
	}

	client, err := sheetsClient(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newSheetsSink(svc, cfg.SpreadsheetID, cfg.TabPrefix), nil
}

func newSheetsSink(svc *sheets.Service, spreadsheetID, prefix string) *SheetsSink {
	if prefix == "" {
		prefix = "logs_"
	}
	return &SheetsSink{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		prefix:        prefix,
		tabs:          make(map[string]bool),
	}
}

// sheetsClient builds a service-account client. Token refreshes outlive any
// request, so it is bound to the background context.
func sheetsClient(cfg SheetsConfig) (*http.Client, error) {
	if len(cfg.CredentialsJSON) > 0 {
		conf, err := google.JWTConfigFromJSON(cfg.CredentialsJSON, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse google credentials: %w", err)
		}
		return conf.Client(context.Background()), nil
	}

	if cfg.ServiceAccountEmail == "" || cfg.PrivateKey == "" {
		return nil, errors.New("sheets sink requires service account email and private key")
	}
	conf := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	return conf.Client(context.Background()), nil
}

func (s *SheetsSink) Name() string { return "sheets" }

// TabName returns the monthly tab an event belongs to.
func (s *SheetsSink) TabName(e Event) string {
	ts := e.Timestamp.UTC()
	return fmt.Sprintf("%s%04d_%02d", s.prefix, ts.Year(), int(ts.Month()))
}

func (s *SheetsSink) AppendBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	// Consecutive events share a tab except across a month boundary.
	start := 0
	for i := 1; i <= len(events); i++ {
		if i < len(events) && s.TabName(events[i]) == s.TabName(events[start]) {
			continue
		}
		if err := s.appendRows(ctx, s.TabName(events[start]), events[start:i]); err != nil {
			return err
		}
		start = i
	}
	return nil
}

func (s *SheetsSink) appendRows(ctx context.Context, tab string, events []Event) error {
	if err := s.ensureTab(ctx, tab); err != nil {
		return err
	}

	values := make([][]interface{}, 0, len(events))
	for _, e := range events {
		values = append(values, toCells(e.Row()))
	}
	return s.append(ctx, tab, values)
}

func (s *SheetsSink) append(ctx context.Context, tab string, values [][]interface{}) error {
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, tab+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append rows to %s: %w", tab, err)
	}
	return nil
}

func (s *SheetsSink) ensureTab(ctx context.Context, tab string) error {
	s.mu.Lock()
	known := s.tabs[tab]
	s.mu.Unlock()
	if known {
		return nil
	}

	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	exists := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			exists = true
			break
		}
	}

	if !exists {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: tab},
				},
			}},
		}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", tab, err)
		}
		if err := s.append(ctx, tab, [][]interface{}{toCells(Columns)}); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.tabs[tab] = true
	s.mu.Unlock()
	return nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
