package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mattslade/ai-scorecard/internal/config"
	"github.com/mattslade/ai-scorecard/internal/delivery"
	"github.com/mattslade/ai-scorecard/internal/report"
)

type fakeRunner struct {
	res   report.RunResult
	err   error
	calls int
	raw   map[string]any
}

func (f *fakeRunner) Run(_ context.Context, raw map[string]any) (report.RunResult, error) {
	f.calls++
	f.raw = raw
	return f.res, f.err
}

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generateReport", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestMethodGate(t *testing.T) {
	runner := &fakeRunner{}
	handler := NewServer(runner, config.ResponseAck)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/generateReport", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: status = %d", method, rr.Code)
		}
	}
	if runner.calls != 0 {
		t.Fatal("non-POST requests must never start a pipeline run")
	}
}

func TestInvalidJSONBody(t *testing.T) {
	runner := &fakeRunner{}
	handler := NewServer(runner, config.ResponseAck)

	rr := post(t, handler, "{not json")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp["error"] == "" {
		t.Fatalf("expected flat error payload, got %s", rr.Body.String())
	}
	if runner.calls != 0 {
		t.Fatal("unparsable body must fail before any stage runs")
	}
}

func TestAckResponse(t *testing.T) {
	runner := &fakeRunner{res: report.RunResult{
		PDF:        []byte("%PDF-1.4"),
		Deliveries: []delivery.Result{{Sink: delivery.SinkCaller, Outcome: delivery.OutcomeSent}},
	}}
	handler := NewServer(runner, config.ResponseAck)

	rr := post(t, handler, `{"q1":"Yes","email":"a@b.com"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["ok"] != true {
		t.Fatalf("body = %v", resp)
	}
	if _, present := resp["pdfBase64"]; present {
		t.Fatal("ack mode must not also return document bytes")
	}
	if runner.raw["q1"] != "Yes" {
		t.Fatalf("submission not passed through: %v", runner.raw)
	}
}

func TestBase64Response(t *testing.T) {
	pdf := []byte("%PDF-1.4 document bytes")
	runner := &fakeRunner{res: report.RunResult{PDF: pdf}}
	handler := NewServer(runner, config.ResponseBase64)

	rr := post(t, handler, `{"q1":"Yes"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(resp["pdfBase64"])
	if err != nil {
		t.Fatalf("pdfBase64 not valid base64: %v", err)
	}
	if string(decoded) != string(pdf) {
		t.Fatal("decoded bytes differ from the rendered document")
	}
}

func TestStageFailureIs500(t *testing.T) {
	runner := &fakeRunner{err: &report.StageError{
		Stage: "render",
		Kind:  report.KindRender,
		Err:   errors.New("chromium timed out"),
	}}
	handler := NewServer(runner, config.ResponseAck)

	rr := post(t, handler, `{"q1":"Yes"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp["error"], "render") {
		t.Fatalf("error should name the failing stage: %q", resp["error"])
	}
}

func TestOversizeBodyRejected(t *testing.T) {
	runner := &fakeRunner{}
	handler := NewServer(runner, config.ResponseAck)

	big := `{"pain_points":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	rr := post(t, handler, big)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rr.Code)
	}
	if runner.calls != 0 {
		t.Fatal("oversize body must not start a run")
	}
}

func TestHealth(t *testing.T) {
	handler := NewServer(&fakeRunner{}, config.ResponseAck)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}
