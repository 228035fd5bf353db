package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

func TestHealthEndpoint(t *testing.T) {
	s := NewServer(0)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestParseEndpointRejectsGarbage(t *testing.T) {
	s := NewServer(0)
	payload, _ := json.Marshal(parseRequest{Text: "this is not valid input at all\nzzzzz\n", FormatHint: "auto"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestParseEndpointRejectsWrongMethod(t *testing.T) {
	s := NewServer(0)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/parse", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestGenerateTargetedAutoAnchorsOnFirstInstruction(t *testing.T) {
	s := NewServer(0)
	req := generateTargetedRequest{
		Instructions: []types.Instruction{
			{Address: "00000000", Bytes: []byte{0x55}, Size: 1, Mnemonic: "push", Type: types.TypeStack},
			{Address: "00000001", Bytes: []byte{0x8B, 0xEC}, Size: 2, Mnemonic: "mov", Type: types.TypeMov},
		},
	}
	payload, _ := json.Marshal(req)
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/generate-targeted", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httpReq)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp generateTargetedResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TargetID != "auto@00000000" {
		t.Errorf("target_id = %q, want auto@00000000", resp.TargetID)
	}
}

func TestCorsRejectsRemoteOrigin(t *testing.T) {
	s := NewServer(0)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("expected no CORS header for a remote origin")
	}
}
