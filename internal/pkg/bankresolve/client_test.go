package bankresolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bank/resolve" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk_test_abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("account_number") != "0123456789" || r.URL.Query().Get("bank_code") != "058" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"data": {
				"account_number": "0123456789",
				"account_name": "ADAEZE OKONKWO",
				"bank": {"name": "Guaranty Trust Bank"}
			}
		}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{BaseURL: server.URL, SecretKey: "sk_test_abc"})
	account, err := client.Resolve(context.Background(), "0123456789", "058")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if account.HolderName != "ADAEZE OKONKWO" {
		t.Fatalf("unexpected holder name %q", account.HolderName)
	}
	if account.BankName != "Guaranty Trust Bank" {
		t.Fatalf("unexpected bank name %q", account.BankName)
	}
}

func TestResolveUnresolvableAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"status": false, "message": "Could not resolve account name"}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{BaseURL: server.URL, SecretKey: "sk_test_abc"})
	_, err := client.Resolve(context.Background(), "0000000000", "058")
	if !errors.Is(err, ErrResolveFailed) {
		t.Fatalf("expected ErrResolveFailed, got %v", err)
	}
}

func TestResolveFalseStatusBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": false, "data": {}}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{BaseURL: server.URL, SecretKey: "sk_test_abc"})
	_, err := client.Resolve(context.Background(), "0123456789", "058")
	if !errors.Is(err, ErrResolveFailed) {
		t.Fatalf("expected ErrResolveFailed, got %v", err)
	}
}

func TestResolveValidatesInput(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:1"})
	if _, err := client.Resolve(context.Background(), "", "058"); err == nil {
		t.Fatal("expected error for empty account number")
	}
	if _, err := client.Resolve(context.Background(), "0123456789", ""); err == nil {
		t.Fatal("expected error for empty bank code")
	}
}
