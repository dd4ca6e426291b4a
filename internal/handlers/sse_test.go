package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"finance-dashboard/internal/services"
)

func newTestSSEHandlers(t *testing.T, loaded bool) *SSEHandlers {
	t.Helper()
	ledger, im := newTestServices(t)
	if loaded {
		loadStatement(t, im)
	}
	return NewSSEHandlers(ledger, im, testLogger())
}

func sseUpload(t *testing.T, h *SSEHandlers, contents, filename string) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"upload": map[string]string{"contents": contents, "filename": filename},
	})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/sse/upload", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")
	rr := httptest.NewRecorder()

	h.HandleUpload(rr, req)

	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	return rr.Body.String()
}

func sseGet(h http.HandlerFunc, path string, signals any) *httptest.ResponseRecorder {
	target := path
	if signals != nil {
		raw, _ := json.Marshal(signals)
		target += "?datastar=" + url.QueryEscape(string(raw))
	}
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestSSEHandlers_HandleUpload(t *testing.T) {
	h := newTestSSEHandlers(t, false)

	out := sseUpload(t, h, dataURL(statementCSV), "transactions.csv")

	for _, want := range []string{
		"datastar-patch-elements",
		"Successfully uploaded transactions.csv",
		"datastar-patch-signals",
		"monthlyChart",
		"categoryChart",
		"explorerPoints",
		"options",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("response missing %q:\n%s", want, out)
		}
	}
	if !h.ledger.HasData() {
		t.Error("ledger should hold the uploaded table")
	}
}

func TestSSEHandlers_HandleUpload_NoFile(t *testing.T) {
	h := newTestSSEHandlers(t, false)

	out := sseUpload(t, h, "", "")

	if !strings.Contains(out, msgNoFile) {
		t.Errorf("response should report %q:\n%s", msgNoFile, out)
	}
	if strings.Contains(out, "monthlyChart") {
		t.Error("charts should not be pushed without a file")
	}
}

func TestSSEHandlers_HandleUpload_Rejected(t *testing.T) {
	h := newTestSSEHandlers(t, true)

	bad := "Date,Description,Amount,Transaction Type,Category,Account Name\n1/05/2023,Acme,1,debit,Mystery,Acme\n"
	out := sseUpload(t, h, dataURL(bad), "bad.csv")

	if !strings.Contains(out, "not in the taxonomy") {
		t.Errorf("response should explain the failure:\n%s", out)
	}
	if !strings.Contains(out, "Mystery") {
		t.Errorf("response should name the offending value:\n%s", out)
	}
	if strings.Contains(out, "monthlyChart") {
		t.Error("charts should not be pushed after a failed upload")
	}
	if got := len(h.ledger.Explorer(mustQuery(t, explorerFilters{Types: []string{"debit", "credit"}}))); got != 3 {
		t.Errorf("prior table should survive, explorer rows = %d", got)
	}
}

func TestSSEHandlers_HandleUpload_BadSignals(t *testing.T) {
	h := newTestSSEHandlers(t, false)

	req := httptest.NewRequest(http.MethodPost, "/sse/upload", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	h.HandleUpload(rr, req)

	if !strings.Contains(rr.Body.String(), "Upload could not be read") {
		t.Errorf("unexpected response:\n%s", rr.Body.String())
	}
}

func mustQuery(t *testing.T, f explorerFilters) services.ExplorerQuery {
	t.Helper()
	q, err := f.query()
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestSSEHandlers_HandleFilters(t *testing.T) {
	h := newTestSSEHandlers(t, true)

	out := sseGet(h.HandleFilters, "/sse/filters", nil).Body.String()

	for _, want := range []string{"options", "Acme", "Shopping", "2023-01-05", "2023-02-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("response missing %q:\n%s", want, out)
		}
	}
}

func TestSSEHandlers_Charts(t *testing.T) {
	tests := []struct {
		name    string
		loaded  bool
		handler func(h *SSEHandlers) http.HandlerFunc
		want    string
	}{
		{"monthly loaded", true, func(h *SSEHandlers) http.HandlerFunc { return h.HandleMonthlyAggregate }, `"monthlyChart":{"series"`},
		{"monthly empty", false, func(h *SSEHandlers) http.HandlerFunc { return h.HandleMonthlyAggregate }, `"monthlyChart":null`},
		{"category loaded", true, func(h *SSEHandlers) http.HandlerFunc { return h.HandleCategoryDistribution }, `"label":"Food","value":2`},
		{"category empty", false, func(h *SSEHandlers) http.HandlerFunc { return h.HandleCategoryDistribution }, `"categoryChart":null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestSSEHandlers(t, tt.loaded)
			out := sseGet(tt.handler(h), "/sse/chart", nil).Body.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("response missing %s:\n%s", tt.want, out)
			}
		})
	}
}

func TestSSEHandlers_HandleExplorer(t *testing.T) {
	h := newTestSSEHandlers(t, true)

	signals := map[string]any{
		"filters": explorerFilters{Types: []string{"credit"}},
	}
	out := sseGet(h.HandleExplorer, "/sse/explorer", signals).Body.String()

	if !strings.Contains(out, `"amount":"-5"`) {
		t.Errorf("credit rows should be negated:\n%s", out)
	}
	if !strings.Contains(out, "1 transactions match") {
		t.Errorf("summary should report the match count:\n%s", out)
	}
}

func TestSSEHandlers_HandleExplorer_NoData(t *testing.T) {
	h := newTestSSEHandlers(t, false)

	out := sseGet(h.HandleExplorer, "/sse/explorer", nil).Body.String()

	if !strings.Contains(out, `"explorerPoints":[]`) {
		t.Errorf("explorer should push an empty list:\n%s", out)
	}
	if !strings.Contains(out, "No data loaded") {
		t.Errorf("summary should report no data:\n%s", out)
	}
}

func TestSSEHandlers_HandleExplorer_InvertedRange(t *testing.T) {
	h := newTestSSEHandlers(t, true)

	signals := map[string]any{
		"filters": explorerFilters{Start: "2023-02-01", End: "2023-01-01", Types: []string{"debit", "credit"}},
	}
	rr := sseGet(h.HandleExplorer, "/sse/explorer", signals)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	out := rr.Body.String()
	if !strings.Contains(out, `"explorerPoints":[]`) {
		t.Errorf("inverted range should push an empty list:\n%s", out)
	}
	if !strings.Contains(out, "0 transactions match") {
		t.Errorf("summary should report zero matches:\n%s", out)
	}
}

func TestSSEHandlers_HandleExplorer_BadFilters(t *testing.T) {
	h := newTestSSEHandlers(t, true)

	signals := map[string]any{
		"filters": explorerFilters{Start: "02/01/2023", Types: []string{"debit"}},
	}
	rr := sseGet(h.HandleExplorer, "/sse/explorer", signals)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	h := newTestSSEHandlers(t, true)

	signals := map[string]any{
		"filters": explorerFilters{Types: []string{"debit", "credit"}, Accounts: []string{"Beta"}},
	}
	out := sseGet(h.HandleRefreshAll, "/sse/refresh-all", signals).Body.String()

	for _, want := range []string{"monthlyChart", "categoryChart", "options", `"amount":"20"`} {
		if !strings.Contains(out, want) {
			t.Errorf("response missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"amount":"10"`) {
		t.Errorf("account filter should drop Acme rows:\n%s", out)
	}
}

// summaryFailWriter rejects the explorer summary fragment and accepts
// everything else.
type summaryFailWriter struct {
	*httptest.ResponseRecorder
}

func (w summaryFailWriter) Write(p []byte) (int, error) {
	if strings.Contains(string(p), "explorer-content") {
		return 0, errors.New("client gone")
	}
	return w.ResponseRecorder.Write(p)
}

func TestSSEHandlers_HandleExplorer_LogsPatchFailure(t *testing.T) {
	ledger, im := newTestServices(t)
	loadStatement(t, im)

	var logs strings.Builder
	h := NewSSEHandlers(ledger, im, slog.New(slog.NewTextHandler(&logs, nil)))

	w := summaryFailWriter{httptest.NewRecorder()}
	h.HandleExplorer(w, httptest.NewRequest(http.MethodGet, "/sse/explorer", nil))

	if !strings.Contains(logs.String(), "patch explorer summary") {
		t.Errorf("failed summary patch should be logged, got:\n%s", logs.String())
	}
}
