package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentload/internal/stats"
)

// fakeScanner returns a report whose MainHours equals the number of runs.
type fakeScanner struct {
	mu   sync.Mutex
	runs int
	err  error
}

func (f *fakeScanner) Run(ctx context.Context) (*stats.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.runs++
	return &stats.Result{
		Report: stats.Report{Version: stats.ReportVersion, MainHours: float64(f.runs)},
		Stats: stats.ScanStats{
			Candidates: map[stats.Role]int{stats.RoleMain: 2},
			Accepted:   map[stats.Role]int{stats.RoleMain: 1},
			Rejected:   map[stats.RejectReason]int{stats.RejectUndersized: 1},
		},
	}, nil
}

func (f *fakeScanner) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeScanner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func newTestServer(scanner Scanner) *HTTPServer {
	return NewHTTPServer(scanner, zerolog.Nop(), Options{Version: "test"})
}

func do(t *testing.T, s *HTTPServer, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeScanner{})

	w := do(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Nil(t, resp.LastScan)
}

func TestReportScansOnce(t *testing.T) {
	scanner := &fakeScanner{}
	s := newTestServer(scanner)

	for i := 0; i < 2; i++ {
		w := do(t, s, http.MethodGet, "/report")
		require.Equal(t, http.StatusOK, w.Code)

		var resp ReportResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 1.0, resp.Report.MainHours)
		assert.Equal(t, 2, resp.Scan.Candidates["main"])
		assert.Equal(t, 1, resp.Scan.Rejected["undersized"])
		assert.False(t, resp.Scan.ScannedAt.IsZero())
	}
	assert.Equal(t, 1, scanner.count())

	var health HealthResponse
	require.NoError(t, json.NewDecoder(do(t, s, http.MethodGet, "/health").Body).Decode(&health))
	assert.NotNil(t, health.LastScan)
}

func TestRefreshForcesScan(t *testing.T) {
	scanner := &fakeScanner{}
	s := newTestServer(scanner)

	do(t, s, http.MethodGet, "/report")
	w := do(t, s, http.MethodPost, "/report/refresh")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ReportResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2.0, resp.Report.MainHours)
	assert.Equal(t, 2, scanner.count())
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeScanner{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/health"},
		{http.MethodPost, "/report"},
		{http.MethodGet, "/report/refresh"},
		{http.MethodPost, "/report/ws"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, tt.method, tt.path).Code)
		})
	}
}

func TestScanFailure(t *testing.T) {
	s := newTestServer(&fakeScanner{err: errors.New("boom")})

	w := do(t, s, http.MethodGet, "/report")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "boom")
}

func TestReportWithEngine(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "-home-alice-projects-demo")
	require.NoError(t, os.MkdirAll(project, 0o755))
	content := `{"timestamp":"2024-01-01T10:00:00Z","type":"user"}` + "\n" +
		`{"timestamp":"2024-01-01T12:00:00Z","type":"assistant"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(project, "s1.jsonl"), []byte(content), 0o644))

	s := newTestServer(&stats.Engine{Root: root, Workers: 2, Location: time.UTC})
	w := do(t, s, http.MethodGet, "/report")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ReportResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2.0, resp.Report.MainHours)
	assert.Equal(t, 1, resp.Report.MainSessions)
	require.Len(t, resp.Report.TopProjects, 1)
	assert.Equal(t, stats.ProjectName("demo"), resp.Report.TopProjects[0].Name)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeScanner{})
	do(t, s, http.MethodPost, "/report/refresh")

	w := do(t, s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agentload_scans_total")
}

func TestWebSocketPushesReports(t *testing.T) {
	s := newTestServer(&fakeScanner{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/report/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() wsMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	first := read()
	assert.Equal(t, "report", first.Type)
	require.NotNil(t, first.Report)
	assert.Equal(t, 1.0, first.Report.MainHours)

	require.Eventually(t, func() bool { return s.hub.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err = s.Scan(context.Background())
	require.NoError(t, err)

	second := read()
	require.NotNil(t, second.Report)
	assert.Equal(t, 2.0, second.Report.MainHours)
}

func dialReport(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/report/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestWebSocketPushesScanErrors(t *testing.T) {
	scanner := &fakeScanner{}
	s := newTestServer(scanner)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialReport(t, ts)
	defer conn.Close()

	var msg wsMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "report", msg.Type)

	scanner.setErr(errors.New("disk gone"))
	_, err := s.Scan(context.Background())
	require.Error(t, err)

	msg = wsMessage{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "disk gone", msg.Error)
	assert.Nil(t, msg.Report)

	// the previous result is kept
	w := do(t, s, http.MethodGet, "/report")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestWebSocketClientsSeeLatestReport(t *testing.T) {
	const scans = 20
	const clients = 10

	s := newTestServer(&fakeScanner{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	_, err := s.Scan(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i < scans; i++ {
			_, _ = s.Scan(context.Background())
		}
	}()

	conns := make([]*websocket.Conn, clients)
	for i := range conns {
		conns[i] = dialReport(t, ts)
		defer conns[i].Close()
	}
	wg.Wait()

	// every client ends on the final report, whenever it connected
	for i, conn := range conns {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		for {
			var msg wsMessage
			require.NoError(t, conn.ReadJSON(&msg), "client %d", i)
			require.NotNil(t, msg.Report)
			if msg.Report.MainHours == float64(scans) {
				break
			}
		}
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	s := newTestServer(&fakeScanner{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRescanSchedule(t *testing.T) {
	scanner := &fakeScanner{}
	s := NewHTTPServer(scanner, zerolog.Nop(), Options{Schedule: "@every 1s"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.rescanLoop(ctx)

	assert.Eventually(t, func() bool { return scanner.count() >= 1 }, 5*time.Second, 20*time.Millisecond)
}

func TestRescanOnFileChange(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "-home-alice-demo")
	require.NoError(t, os.MkdirAll(project, 0o755))

	scanner := &fakeScanner{}
	s := NewHTTPServer(scanner, zerolog.Nop(), Options{Watch: true, WatchRoot: root, Debounce: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.rescanLoop(ctx)

	// the watcher starts asynchronously; keep touching the file until a scan happens
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(project, "s.jsonl"), []byte("{}\n"), 0o644)
		return scanner.count() >= 1
	}, 5*time.Second, 100*time.Millisecond)
}
