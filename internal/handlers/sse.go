package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"finance-dashboard/internal/errors"
	"finance-dashboard/internal/models"
	"finance-dashboard/internal/services"
)

var fileStatusTemplate = template.Must(template.New("fileStatus").Parse(
	`<div id="file-status" class="file-status {{.Class}}">{{.Message}}{{if .Details}}<small>{{.Details}}</small>{{end}}</div>`))

var explorerSummaryTemplate = template.Must(template.New("explorerSummary").Parse(
	`<div id="explorer-content">{{if .Loaded}}{{.Count}} transactions match{{else}}No data loaded{{end}}</div>`))

type fileStatus struct {
	Class   string
	Message string
	Details string
}

type uploadSignals struct {
	Upload struct {
		Contents string `json:"contents"`
		Filename string `json:"filename"`
	} `json:"upload"`
}

type explorerSignals struct {
	Filters explorerFilters `json:"filters"`
}

type filterOptions struct {
	Accounts      []string `json:"accounts"`
	Merchants     []string `json:"merchants"`
	Categories    []string `json:"categories"`
	Subcategories []string `json:"subcategories"`
	MinDate       string   `json:"minDate"`
	MaxDate       string   `json:"maxDate"`
}

type SSEHandlers struct {
	ledger   *services.Ledger
	importer *services.Importer
	logger   *slog.Logger
}

func NewSSEHandlers(ledger *services.Ledger, importer *services.Importer, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		ledger:   ledger,
		importer: importer,
		logger:   logger,
	}
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	err := tmpl.Execute(&buf, data)
	return buf.String(), err
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) bool {
	payload, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return false
	}
	if err := sse.PatchSignals(payload); err != nil {
		h.logger.Warn("patch signals", "error", err)
		return false
	}
	return true
}

func (h *SSEHandlers) patchStatus(sse *datastar.ServerSentEventGenerator, status fileStatus) {
	html, err := render(fileStatusTemplate, status)
	if err != nil {
		h.logger.Error("render file status", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch file status", "error", err)
	}
}

// HandleUpload imports the file carried in the upload signals and, on
// success, pushes fresh filter options and charts.
func (h *SSEHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	var signals uploadSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		h.patchStatus(sse, fileStatus{Class: "error", Message: "Upload could not be read"})
		return
	}

	sse := datastar.NewSSE(w, r)

	up := signals.Upload
	if up.Contents == "" || up.Filename == "" {
		h.patchStatus(sse, fileStatus{Class: "idle", Message: msgNoFile})
		return
	}

	n, err := h.importer.ImportPayload(r.Context(), up.Contents, up.Filename)
	if err != nil {
		appErr := errors.FromImport(err)
		h.patchStatus(sse, fileStatus{Class: "error", Message: appErr.Message, Details: appErr.Details})
		return
	}

	h.logger.Info("upload imported", "filename", up.Filename, "records", n)
	h.patchStatus(sse, fileStatus{Class: "ok", Message: uploadMessage(up.Filename)})

	signalsOut := h.chartSignals(services.ExplorerQuery{Types: []models.TransactionType{models.Debit, models.Credit}})
	signalsOut["options"] = h.options()
	signalsOut["upload"] = map[string]any{"contents": "", "filename": up.Filename}
	h.patchSignals(sse, signalsOut)
}

func (h *SSEHandlers) options() filterOptions {
	opts := filterOptions{
		Accounts:      h.ledger.Accounts(),
		Merchants:     h.ledger.Merchants(),
		Categories:    h.ledger.TaxonomyCategories(),
		Subcategories: h.ledger.Subcategories(),
	}
	if dr, ok := h.ledger.DateRange(); ok {
		opts.MinDate = dr.Min.Format(queryDateLayout)
		opts.MaxDate = dr.Max.Format(queryDateLayout)
	}
	return opts
}

func (h *SSEHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.patchSignals(sse, map[string]any{"options": h.options()})
}

func (h *SSEHandlers) monthlySignal() any {
	if chart, ok := h.ledger.MonthlyAggregate(); ok {
		return chart
	}
	return nil
}

func (h *SSEHandlers) categorySignal() any {
	if dist, ok := h.ledger.CategoryDistribution(); ok {
		return dist
	}
	return nil
}

func (h *SSEHandlers) chartSignals(q services.ExplorerQuery) map[string]any {
	return map[string]any{
		"monthlyChart":   h.monthlySignal(),
		"categoryChart":  h.categorySignal(),
		"explorerPoints": h.ledger.Explorer(q),
	}
}

func (h *SSEHandlers) HandleMonthlyAggregate(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.patchSignals(sse, map[string]any{"monthlyChart": h.monthlySignal()})
}

func (h *SSEHandlers) HandleCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.patchSignals(sse, map[string]any{"categoryChart": h.categorySignal()})
}

func (h *SSEHandlers) readExplorerQuery(r *http.Request) (services.ExplorerQuery, error) {
	var signals explorerSignals
	if r.Method != http.MethodGet || r.URL.Query().Has("datastar") {
		if err := datastar.ReadSignals(r, &signals); err != nil {
			return services.ExplorerQuery{}, err
		}
	}
	return signals.Filters.query()
}

func (h *SSEHandlers) HandleExplorer(w http.ResponseWriter, r *http.Request) {
	q, err := h.readExplorerQuery(r)
	if err != nil {
		h.logger.Warn("invalid explorer filters", "error", err)
		http.Error(w, "invalid explorer filters", http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)
	points := h.ledger.Explorer(q)
	if !h.patchSignals(sse, map[string]any{"explorerPoints": points}) {
		return
	}

	html, err := render(explorerSummaryTemplate, map[string]any{
		"Loaded": h.ledger.HasData(),
		"Count":  len(points),
	})
	if err != nil {
		h.logger.Error("render explorer summary", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch explorer summary", "error", err)
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	q, err := h.readExplorerQuery(r)
	if err != nil {
		h.logger.Warn("invalid explorer filters", "error", err)
		http.Error(w, "invalid explorer filters", http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)
	signals := h.chartSignals(q)
	signals["options"] = h.options()
	h.patchSignals(sse, signals)
}
