package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRequestStarted(t *testing.T) {
	done := RequestStarted()
	assert.Contains(t, scrape(t), "salud_ocupacional_http_inflight_requests 1")
	done("GET", "/v1/candidates", 200)

	body := scrape(t)
	assert.Contains(t, body, "salud_ocupacional_http_inflight_requests 0")
	assert.Contains(t, body, `salud_ocupacional_http_requests_total{method="GET",path="/v1/candidates",status="200"}`)
}

func TestDomainCounters(t *testing.T) {
	RecordMail("function", nil)
	RecordMail("function", errors.New("smtp down"))
	RecordCertificateIssued("APTO")
	RecordTokenMinted()
	RecordJobRun("certificate_expiry", true, 20*time.Millisecond)

	body := scrape(t)
	assert.Contains(t, body, `salud_ocupacional_mail_messages_total{result="failed",source="function"}`)
	assert.Contains(t, body, `salud_ocupacional_certificates_issued_total{concept="APTO"}`)
	assert.Contains(t, body, "salud_ocupacional_functions_tokens_minted_total")
	assert.Contains(t, body, `salud_ocupacional_scheduler_job_runs_total{job="certificate_expiry",success="true"}`)
}
