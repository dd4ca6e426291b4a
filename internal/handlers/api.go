package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"finance-dashboard/internal/errors"
	"finance-dashboard/internal/observability"
	"finance-dashboard/internal/services"
)

const (
	cacheNoStore      = "no-store"
	multipartMemLimit = 8 << 20
	msgNoFile         = "No file selected"
)

type APIHandlers struct {
	ledger   *services.Ledger
	importer *services.Importer
	logger   *slog.Logger
}

func NewAPIHandlers(ledger *services.Ledger, importer *services.Importer, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		ledger:   ledger,
		importer: importer,
		logger:   logger,
	}
}

type uploadRequest struct {
	Contents string `json:"contents"`
	Filename string `json:"filename"`
}

type uploadResponse struct {
	Filename string `json:"filename"`
	Records  int    `json:"records"`
	Message  string `json:"message"`
}

// HandleUpload accepts either a JSON body carrying a data URL or a
// multipart form with a "file" field.
func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		filename string
		records  int
		err      error
	)
	switch mediaType {
	case "multipart/form-data":
		filename, records, err = h.uploadMultipart(r)
	default:
		filename, records, err = h.uploadJSON(r)
	}
	if err != nil {
		errors.WriteError(w, h.logger, errors.FromImport(err), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, uploadResponse{
		Filename: filename,
		Records:  records,
		Message:  uploadMessage(filename),
	}, map[string]string{"Cache-Control": cacheNoStore})
}

func (h *APIHandlers) uploadJSON(r *http.Request) (string, int, error) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return "", 0, err
		}
		return "", 0, errors.BadRequestWrap(err, "Request body must be JSON with contents and filename")
	}
	if req.Contents == "" || req.Filename == "" {
		return "", 0, errors.BadRequest(msgNoFile)
	}

	n, err := h.importer.ImportPayload(r.Context(), req.Contents, req.Filename)
	return req.Filename, n, err
}

func (h *APIHandlers) uploadMultipart(r *http.Request) (string, int, error) {
	if err := r.ParseMultipartForm(multipartMemLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return "", 0, err
		}
		return "", 0, errors.BadRequestWrap(err, "Invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", 0, errors.BadRequest(msgNoFile)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return "", 0, fmt.Errorf("read upload: %w", err)
	}

	n, err := h.importer.ImportBytes(r.Context(), raw, header.Filename)
	return header.Filename, n, err
}

func uploadMessage(filename string) string {
	return fmt.Sprintf("Successfully uploaded %s", filename)
}

// writeData sends a query result. Results with ok=false are sent as null so
// the dashboard can tell "no data" apart from an empty chart.
func writeData(w http.ResponseWriter, data any, ok bool) {
	if !ok {
		data = nil
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheNoStore})
}

func (h *APIHandlers) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.ledger.Accounts()
	writeData(w, accounts, accounts != nil)
}

func (h *APIHandlers) HandleMerchants(w http.ResponseWriter, r *http.Request) {
	merchants := h.ledger.Merchants()
	writeData(w, merchants, merchants != nil)
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.ledger.Categories()
	writeData(w, categories, categories != nil)
}

func (h *APIHandlers) HandleSubcategories(w http.ResponseWriter, r *http.Request) {
	subcategories := h.ledger.Subcategories()
	writeData(w, subcategories, subcategories != nil)
}

func (h *APIHandlers) HandleDateRange(w http.ResponseWriter, r *http.Request) {
	dr, ok := h.ledger.DateRange()
	writeData(w, dr, ok)
}

func (h *APIHandlers) HandleMonthlyAggregate(w http.ResponseWriter, r *http.Request) {
	chart, ok := h.ledger.MonthlyAggregate()
	writeData(w, chart, ok)
}

func (h *APIHandlers) HandleCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	dist, ok := h.ledger.CategoryDistribution()
	writeData(w, dist, ok)
}

func (h *APIHandlers) HandleExplorer(w http.ResponseWriter, r *http.Request) {
	q, err := filtersFromValues(r.URL.Query()).query()
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, err.Error()), observability.GetRequestID(r.Context()))
		return
	}

	writeData(w, h.ledger.Explorer(q), true)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"loaded":    h.ledger.HasData(),
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.ledger.Stats())
}
