package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "michat-test")
	os.Setenv("JWT_SECRET", "test-secret")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "michat-test", conf.DatabaseName)
	assert.Equal(t, "test-secret", conf.JWTSecret)
}

func TestNewAdminDefaults(t *testing.T) {
	os.Unsetenv("ADMIN_USERNAME")
	os.Unsetenv("ADMIN_PASSWORD")
	os.Unsetenv("ADMIN_COLOR")
	conf := New()

	assert.Equal(t, "admin", conf.AdminUsername)
	assert.Equal(t, "admin", conf.AdminPassword)
	assert.Equal(t, "#ff0000", conf.AdminColor)

	os.Setenv("ADMIN_USERNAME", "root")
	conf = New()
	assert.Equal(t, "root", conf.AdminUsername)
	os.Unsetenv("ADMIN_USERNAME")
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"detail": "error it borked"}`, rr.Body.String())
}
