package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"surveycore/internal/blob"
	"surveycore/internal/schema"
)

func newTestHandler(t *testing.T) (*Handler, *Worker) {
	t.Helper()
	w := NewWorker(fixtureSource{table: fixtureTable()}, blob.NewMemory(), nil, nil, nil)
	w.Start()
	t.Cleanup(func() { _ = w.Stop(context.Background()) })
	return NewHandler(w), w
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHandlerListStatements(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/statements", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Statements []struct {
			Key      string `json:"key"`
			Question string `json:"question"`
		} `json:"statements"`
	}
	decodeBody(t, rec, &body)
	if len(body.Statements) != len(schema.Statements) {
		t.Fatalf("statements = %d want %d", len(body.Statements), len(schema.Statements))
	}
	for _, s := range body.Statements {
		if s.Question == "" {
			t.Fatalf("statement %s has no question text", s.Key)
		}
	}
}

func TestHandlerCreateAndGetReport(t *testing.T) {
	h, w := newTestHandler(t)

	payload := `{"statement":"humangood","formats":["json","csv"],"requested_by":"analyst@example.org"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(payload)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Report Record `json:"report"`
	}
	decodeBody(t, rec, &created)
	if created.Report.ID == "" || created.Report.StatementKey != schema.FieldHumanGood {
		t.Fatalf("created = %+v", created.Report)
	}

	waitForTerminal(t, w, created.Report.ID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+created.Report.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var fetched struct {
		Report Record `json:"report"`
	}
	decodeBody(t, rec, &fetched)
	if fetched.Report.Status != StatusSucceeded {
		t.Fatalf("status = %s error = %s", fetched.Report.Status, fetched.Report.Error)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var listed struct {
		Reports []Record `json:"reports"`
	}
	decodeBody(t, rec, &listed)
	if len(listed.Reports) != 1 {
		t.Fatalf("reports = %+v", listed.Reports)
	}
}

func TestHandlerRejectsBadCreate(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(`{"statement":"favcolor"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown statement status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(`{"statement":"humangood","formats":["pdf"]}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad format status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(`{not json`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad payload status = %d", rec.Code)
	}
}

func TestHandlerNotFoundAndMethods(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/doesnotexist", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing report status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/reports", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", rec.Code)
	}
}
