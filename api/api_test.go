package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthCheckHandler(t *testing.T) {
	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(HealthCheckHandler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected response code %d. Got %d\n", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "alive") {
		t.Errorf("Expected 'alive' in the reponse. Got '%s'", rr.Body.String())
	}
}
