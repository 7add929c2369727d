package abstractapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbstractReputationValidator_Validate(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"good", http.StatusOK, `{"email_reputation":"HIGH"}`, ""},
		{"disposable", http.StatusOK, `{"is_disposable_email":true}`, "disposable"},
		{"role", http.StatusOK, `{"is_role_email":true}`, "role-based"},
		{"low", http.StatusOK, `{"email_reputation":"LOW"}`, "too low"},
		{"service down", http.StatusServiceUnavailable, ``, "service error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "key", r.URL.Query().Get("api_key"))
				assert.Equal(t, "ada@example.com", r.URL.Query().Get("email"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			v, err := NewAbstractReputationValidator("key")
			require.NoError(t, err)
			v.Endpoint = srv.URL + "/v1/"

			err = v.Validate(context.Background(), "ada@example.com")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
