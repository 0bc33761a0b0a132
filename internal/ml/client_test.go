package ml

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		want     []Song
		wantErr  bool
		checkErr error
	}{
		{
			name:   "scored results",
			status: http.StatusOK,
			body:   `{"query":"rain","results":[{"title":"Purple Rain","artist":"Prince","score":0.97},{"title":"Rain","artist":"Mika","score":0.81}]}`,
			want: []Song{
				{Title: "Purple Rain", Artist: "Prince", Score: 0.97},
				{Title: "Rain", Artist: "Mika", Score: 0.81},
			},
		},
		{
			name:   "no results yields empty slice",
			status: http.StatusOK,
			body:   `{"query":"zzz","results":[]}`,
			want:   []Song{},
		},
		{
			name:   "null results yields empty slice",
			status: http.StatusOK,
			body:   `{"query":"zzz"}`,
			want:   []Song{},
		},
		{
			name:     "server error maps to unavailable",
			status:   http.StatusInternalServerError,
			body:     `boom`,
			wantErr:  true,
			checkErr: ErrUnavailable,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `{not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				if r.URL.Path != "/search" {
					t.Errorf("path = %s, want /search", r.URL.Path)
				}
				var req searchRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Query == "" && tt.status == http.StatusOK {
					t.Error("request body missing query")
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL)
			got, err := client.Search(context.Background(), "rain")

			if tt.wantErr {
				if err == nil {
					t.Fatal("Search() error = nil, want error")
				}
				if tt.checkErr != nil && !errors.Is(err, tt.checkErr) {
					t.Errorf("Search() error = %v, want %v", err, tt.checkErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchUnconfigured(t *testing.T) {
	client := NewClient("")

	if client.Enabled() {
		t.Error("Enabled() = true for empty base URL")
	}
	if _, err := client.Search(context.Background(), "q"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Search() error = %v, want ErrUnavailable", err)
	}
}

func TestSearchUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	if _, err := client.Search(context.Background(), "q"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Search() error = %v, want ErrUnavailable", err)
	}
}
