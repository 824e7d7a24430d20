package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, 42, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	uid, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != 42 {
		t.Errorf("user id = %d, want 42", uid)
	}
}

func TestParseTokenRejections(t *testing.T) {
	secret := []byte("test-secret")

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken([]byte("other"), 1, time.Hour)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, err := ParseToken(secret, token); err == nil {
			t.Error("expected rejection for wrong secret")
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken(secret, 1, -time.Minute)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, err := ParseToken(secret, token); err == nil {
			t.Error("expected rejection for expired token")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := ParseToken(secret, "not.a.token"); err == nil {
			t.Error("expected rejection for garbage token")
		}
	})
}

func TestMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	mw := NewMiddleware(secret)

	var gotUID int64
	handler := mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("user id missing from context")
		}
		gotUID = uid
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token passes", func(t *testing.T) {
		token, _ := GenerateToken(secret, 7, time.Hour)
		req := httptest.NewRequest(http.MethodPost, "/auth/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusOK || gotUID != 7 {
			t.Errorf("status = %d uid = %d", rec.Code, gotUID)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/test", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/test", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}
