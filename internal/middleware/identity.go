package middleware

// identity.go defines helper functions shared across middleware files.
// JWTAuth stores the token subject under the "user_id" context key; the
// claim decodes as a float64 when the token was minted with a numeric
// subject, so the helper normalizes across the types it may carry.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID extracts the authenticated user's identifier from the context
// as a string. It returns "guest" when no user is authenticated.
func userID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return strconv.FormatFloat(v, 'f', -1, 64)
    case uint64:
        return strconv.FormatUint(v, 10)
    case int64:
        return strconv.FormatInt(v, 10)
    case int:
        return strconv.Itoa(v)
    }
    return "guest"
}
