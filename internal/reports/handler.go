package reports

import (
	"encoding/json"
	"net/http"
	"strings"

	"surveycore/internal/render"
	"surveycore/internal/schema"
)

// Handler provides HTTP access to statement metadata and report requests.
type Handler struct {
	Reports Scheduler
}

// NewHandler constructs a report HTTP handler.
func NewHandler(reports Scheduler) *Handler {
	return &Handler{Reports: reports}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodGet && path == "/api/v1/statements":
		h.handleListStatements(w)
	case path == "/api/v1/reports":
		switch r.Method {
		case http.MethodGet:
			h.handleListReports(w)
		case http.MethodPost:
			h.handleCreateReport(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case strings.HasPrefix(path, "/api/v1/reports/"):
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleGetReport(w, strings.TrimPrefix(path, "/api/v1/reports/"))
	default:
		http.NotFound(w, r)
	}
}

type statementInfo struct {
	Key      string `json:"key"`
	Question string `json:"question"`
}

func (h *Handler) handleListStatements(w http.ResponseWriter) {
	statements := make([]statementInfo, 0, len(schema.Statements))
	for _, key := range schema.Statements {
		statements = append(statements, statementInfo{Key: key, Question: schema.Question(key)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"statements": statements})
}

func (h *Handler) handleListReports(w http.ResponseWriter) {
	if h.Reports == nil {
		writeError(w, http.StatusInternalServerError, "report scheduler not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": h.Reports.ListReports()})
}

type createRequest struct {
	Statement   string   `json:"statement"`
	Formats     []string `json:"formats"`
	RequestedBy string   `json:"requested_by"`
	Reason      string   `json:"reason"`
}

func (h *Handler) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	if h.Reports == nil {
		writeError(w, http.StatusInternalServerError, "report scheduler not configured")
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		writeError(w, http.StatusBadRequest, "invalid report request payload")
		return
	}
	formats := make([]render.Format, 0, len(req.Formats))
	for _, name := range req.Formats {
		format, ok := render.ParseFormat(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			writeError(w, http.StatusBadRequest, "unsupported report format")
			return
		}
		formats = append(formats, format)
	}
	record, err := h.Reports.EnqueueReport(r.Context(), Input{
		StatementKey: req.Statement,
		Formats:      formats,
		RequestedBy:  req.RequestedBy,
		Reason:       req.Reason,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"report": record})
}

func (h *Handler) handleGetReport(w http.ResponseWriter, id string) {
	if h.Reports == nil || id == "" {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	record, ok := h.Reports.GetReport(id)
	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": record})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
