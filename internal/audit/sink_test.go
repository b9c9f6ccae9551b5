package audit

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/liflo-ai/liflo/internal/config"
)

func TestEventRowFollowsColumns(t *testing.T) {
	latency := int64(42)
	c, s := 5, 3
	e := Event{
		Timestamp:  time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		RequestID:  "req-1",
		UserID:     "u1",
		Endpoint:   "/api/records",
		Method:     "POST",
		Event:      EventRecordCreated,
		Status:     StatusSuccess,
		LatencyMs:  &latency,
		GoalID:     "g1",
		RecordID:   "r1",
		Date:       "2025-06-01",
		StatusCode: 201,
		ChallengeU: &c,
		SkillU:     &s,
	}

	row := e.Row()

	require.Len(t, row, len(Columns))
	assert.Equal(t, "2025-06-01T09:30:00Z", row[0])
	assert.Equal(t, "RECORD_CREATED", row[5])
	assert.Equal(t, "success", row[6])
	assert.Equal(t, "42", row[7])
	assert.Equal(t, "201", row[14])
	assert.Equal(t, "5", row[15])
	assert.Equal(t, "3", row[16])
	assert.Equal(t, "", row[17])
	assert.Equal(t, "", row[18])
}

func TestConsoleSinkWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)

	require.NoError(t, sink.AppendBatch(context.Background(), evs(0, 2)))

	sc := bufio.NewScanner(&buf)
	var lines []map[string]any
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "0", lines[0]["requestId"])
	assert.Equal(t, "RECORD_CREATED", lines[1]["event"])
	assert.NotContains(t, lines[0], "aiChallenge")
}

type memStorage struct {
	mu          sync.Mutex
	keys        []string
	contentType string
	bodies      []string
}

func (m *memStorage) Save(_ context.Context, key, contentType string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	m.contentType = contentType
	m.bodies = append(m.bodies, string(b))
	return nil
}

func TestObjectSinkStoresOneObjectPerBatch(t *testing.T) {
	store := &memStorage{}
	sink := NewObjectSink(store, "audit")

	require.NoError(t, sink.AppendBatch(context.Background(), evs(0, 3)))

	require.Len(t, store.keys, 1)
	assert.Regexp(t, regexp.MustCompile(`^audit/2025/06/01/\d+-[0-9a-f-]{36}\.jsonl$`), store.keys[0])
	assert.Equal(t, "application/x-ndjson", store.contentType)
	assert.Equal(t, 3, strings.Count(store.bodies[0], "\n"))
	assert.NoError(t, sink.AppendBatch(context.Background(), nil))
	assert.Len(t, store.keys, 1)
}

type fakeSheets struct {
	mu      sync.Mutex
	tabs    []string
	gets    int
	added   []string
	appends []sheetAppend
}

type sheetAppend struct {
	Range  string
	Option string
	Values [][]string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const base = "/v4/spreadsheets/sheet-1"
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == base:
		f.gets++
		var sheetsOut []map[string]any
		for _, title := range f.tabs {
			sheetsOut = append(sheetsOut, map[string]any{"properties": map[string]any{"title": title}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheetsOut})

	case r.Method == http.MethodPost && r.URL.Path == base+":batchUpdate":
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			f.added = append(f.added, rq.AddSheet.Properties.Title)
			f.tabs = append(f.tabs, rq.AddSheet.Properties.Title)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-1"})

	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, base+"/values/") && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]string `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		rng := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, base+"/values/"), ":append")
		f.appends = append(f.appends, sheetAppend{
			Range:  rng,
			Option: r.URL.Query().Get("valueInputOption"),
			Values: body.Values,
		})
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-1"})

	default:
		http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusNotFound)
	}
}

func newFakeSheetsSink(t *testing.T, fake *fakeSheets) *SheetsSink {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return newSheetsSink(svc, "sheet-1", "logs_")
}

func TestSheetsSinkAppendsToMonthlyTabs(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"logs_2025_05"}}
	sink := newFakeSheetsSink(t, fake)

	may := ev(100)
	may.Timestamp = time.Date(2025, 5, 31, 23, 59, 0, 0, time.UTC)
	batch := append([]Event{may}, evs(0, 2)...)

	require.NoError(t, sink.AppendBatch(context.Background(), batch))

	fake.mu.Lock()
	assert.Equal(t, 2, fake.gets)
	assert.Equal(t, []string{"logs_2025_06"}, fake.added)
	require.Len(t, fake.appends, 3)
	assert.Equal(t, "logs_2025_05!A1", fake.appends[0].Range)
	assert.Equal(t, "RAW", fake.appends[0].Option)
	assert.Equal(t, "100", fake.appends[0].Values[0][1])
	assert.Equal(t, Columns, fake.appends[1].Values[0])
	assert.Equal(t, "logs_2025_06!A1", fake.appends[2].Range)
	assert.Len(t, fake.appends[2].Values, 2)
	fake.mu.Unlock()

	// known tabs are not looked up again
	require.NoError(t, sink.AppendBatch(context.Background(), []Event{ev(5)}))
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 2, fake.gets)
	assert.Len(t, fake.appends, 4)
}

func TestSheetsSinkTabName(t *testing.T) {
	sink := newSheetsSink(nil, "sheet-1", "")
	e := Event{Timestamp: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "logs_2025_01", sink.TabName(e))
}

func TestSheetsSinkReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	svc, err := sheets.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	err = newSheetsSink(svc, "sheet-1", "logs_").AppendBatch(context.Background(), []Event{ev(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read spreadsheet")
}

func TestRedisSinkAppendsToStream(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	stream := "liflo:audit:test:" + time.Now().Format("150405.000000")
	sink, err := NewRedisSink(ctx, RedisConfig{Addr: addr, Stream: stream, MaxLen: 100})
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.AppendBatch(ctx, evs(0, 3)))

	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	defer rdb.Close()
	defer rdb.Del(ctx, stream)

	msgs, err := rdb.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "RECORD_CREATED", msgs[0].Values["event"])
}

func TestNewSink(t *testing.T) {
	ctx := context.Background()

	sink, err := NewSink(ctx, &config.Config{LogSink: "console"})
	require.NoError(t, err)
	assert.Equal(t, "console", SinkName(sink))

	sink, err = NewSink(ctx, &config.Config{LogSink: "none"})
	require.NoError(t, err)
	assert.Equal(t, "none", SinkName(sink))

	_, err = NewSink(ctx, &config.Config{LogSink: "kafka"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supported")

	_, err = NewSink(ctx, &config.Config{LogSink: "sheets", SheetsSpreadsheetID: "s", GoogleCredentialsJSONBase64: "%%%"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64")

	_, err = NewSink(ctx, &config.Config{LogSink: "redis"})
	assert.Error(t, err)
}
