package server_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "taskboard/docs"
	"taskboard/internal/config"
	"taskboard/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *config.Config {
	return &config.Config{
		DBDriver:      config.DriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "server.db"),
		ServerPort:    "0",
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		DragThreshold: 5,
	}
}

func TestInit_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s, err := server.Init(sqliteConfig(t), nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"Health", "/healthz", "", http.StatusOK},
		{"SwaggerDoc", "/swagger/doc.json", "", http.StatusOK},
		{"NoToken", "/my-tasks", "", http.StatusUnauthorized},
		{"BadToken", "/my-tasks", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := httptest.NewRecorder()
			s.Engine.ServeHTTP(resp, req)
			assert.Equal(t, tt.status, resp.Code)
		})
	}

	// выданный токен проходит проверку
	token, err := s.Issuer().GenerateToken("8c3a0a8e-6f39-4f0a-9d0e-3f4f9b8f2c11")
	require.NoError(t, err)
	req, _ := http.NewRequest("GET", "/my-tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestInit_RejectsBadConfig(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DBDriver = "mysql"

	_, err := server.Init(cfg, nil)

	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := sqliteConfig(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg.ServerPort = fmt.Sprint(l.Addr().(*net.TCPAddr).Port)
	require.NoError(t, l.Close())

	s, err := server.Init(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + cfg.ServerPort + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
