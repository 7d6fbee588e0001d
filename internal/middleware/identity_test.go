package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
)

func testContext() echo.Context {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    return e.NewContext(req, httptest.NewRecorder())
}

func TestUserIDFromNumericClaim(t *testing.T) {
    // Map claims decode numeric token subjects as float64.
    c := testContext()
    c.Set("user_id", float64(7))
    assert.Equal(t, "7", userID(c))
}

func TestUserIDFromStringClaim(t *testing.T) {
    c := testContext()
    c.Set("user_id", "42")
    assert.Equal(t, "42", userID(c))
}

func TestUserIDUnauthenticated(t *testing.T) {
    assert.Equal(t, "guest", userID(testContext()))
}

func TestCurrentUserIDFallsBackToAnon(t *testing.T) {
    assert.Equal(t, "anon", currentUserID(testContext()))

    c := testContext()
    c.Set("user_id", float64(12))
    assert.Equal(t, "12", currentUserID(c))
}
