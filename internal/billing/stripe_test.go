package billing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnsureCustomerFindsOrCreates(t *testing.T) {
	var created []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/customers" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("limit") != "1" {
				t.Errorf("limit = %q", r.URL.Query().Get("limit"))
			}
			if r.URL.Query().Get("email") == "known@example.com" {
				w.Write([]byte(`{"object":"list","url":"/v1/customers","has_more":false,"data":[{"id":"cus_known","object":"customer","email":"known@example.com"}]}`))
				return
			}
			w.Write([]byte(`{"object":"list","url":"/v1/customers","has_more":false,"data":[]}`))
		case http.MethodPost:
			r.ParseForm()
			created = append(created, r.PostForm.Get("email"))
			w.Write([]byte(`{"id":"cus_new","object":"customer","email":"` + r.PostForm.Get("email") + `"}`))
		}
	}))
	defer srv.Close()

	c := NewClient("sk_test")
	c.BaseURL = srv.URL
	ctx := context.Background()

	id, err := c.EnsureCustomer(ctx, "known@example.com")
	if err != nil || id != "cus_known" {
		t.Fatalf("id=%q err=%v", id, err)
	}
	id, err = c.EnsureCustomer(ctx, "new@example.com")
	if err != nil || id != "cus_new" {
		t.Fatalf("id=%q err=%v", id, err)
	}
	if len(created) != 1 || created[0] != "new@example.com" {
		t.Fatalf("created = %v", created)
	}
}

func TestEnsureCustomerWithoutKey(t *testing.T) {
	c := NewClient("  ")
	id, err := c.EnsureCustomer(context.Background(), "ops@example.com")
	if err != nil || id != "" {
		t.Fatalf("id=%q err=%v", id, err)
	}
}

func TestEnsureCustomerAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","message":"declined"}}`))
	}))
	defer srv.Close()

	c := NewClient("sk_test")
	c.BaseURL = srv.URL
	_, err := c.EnsureCustomer(context.Background(), "ops@example.com")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusPaymentRequired || apiErr.Message != "declined" {
		t.Fatalf("err = %v", err)
	}
}
