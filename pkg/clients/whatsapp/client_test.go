package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/gelateria/internal/config"
)

func TestSendText(t *testing.T) {
	var got []textPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v21.0/12345/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q", auth)
		}
		var p textPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		got = append(got, p)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{
		AccessToken:   "secret",
		PhoneNumberID: "12345",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v21.0",
	})

	ids, err := client.SendText(context.Background(), "39333000111", "Stock summary")
	if err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "wamid.1" {
		t.Errorf("ids = %v", ids)
	}
	if len(got) != 1 || got[0].To != "39333000111" || got[0].Text.Body != "Stock summary" || got[0].MessagingProduct != "whatsapp" {
		t.Errorf("payload = %+v", got)
	}
}

func TestSendTextErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "bad", PhoneNumberID: "1", BaseURL: srv.URL, APIVersion: "v21.0"})

	_, err := client.SendText(context.Background(), "39333000111", "hi")
	if err == nil || !strings.Contains(err.Error(), "code=190") {
		t.Errorf("SendText() error = %v, want api code 190", err)
	}

	if _, err := client.SendText(context.Background(), " ", "hi"); err == nil {
		t.Error("SendText() with blank recipient should fail")
	}
}

func TestSplitBody(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "short", text: "abc", limit: 10, want: []string{"abc"}},
		{name: "breaksOnNewline", text: "aaaa\nbbbb\ncc", limit: 8, want: []string{"aaaa\n", "bbbb\ncc"}},
		{name: "hardCut", text: "abcdefghij", limit: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "multibyte", text: "ààààà", limit: 2, want: []string{"àà", "àà", "à"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitBody(tt.text, tt.limit)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("splitBody() = %q, want %q", got, tt.want)
			}
		})
	}
}
