package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tallyhq/tally/pkg/routes"
)

func handlerFor(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}
}

func TestRegister(t *testing.T) {
	group := routes.Group{
		Prefix: "/reports",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: handlerFor("list")},
			{Method: "GET", Pattern: "/{id}", Handler: handlerFor("fetch")},
		},
		Children: []routes.Group{
			{
				Prefix: "/admin",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/purge", Handler: handlerFor("purge")},
				},
			},
		},
	}

	mux := http.NewServeMux()
	routes.Register(mux, group)

	tests := []struct {
		name   string
		method string
		path   string
		want   string
	}{
		{"group route", "GET", "/reports", "list"},
		{"path parameter", "GET", "/reports/abc", "fetch"},
		{"nested child", "POST", "/reports/admin/purge", "purge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if rec.Body.String() != tt.want {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.want)
			}
		})
	}

	t.Run("wrong method rejected", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/reports", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}
