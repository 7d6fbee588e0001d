package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// getRole extracts the role middleware stored on the context.
func getRole(c echo.Context) string {
    if r, ok := c.Get("role").(string); ok {
        return r
    }
    return ""
}

// pathID parses a numeric :id-style path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}

// gateResult is the uniform response body for scanner-facing mutations
// (check-in and claim).  These always answer HTTP 200 so door and claim
// UIs branch on success/reason instead of handling error status codes;
// reason is a stable machine key, message is display text.
type gateResult struct {
    Success bool        `json:"success"`
    Reason  string      `json:"reason,omitempty"`
    Message string      `json:"message,omitempty"`
    Data    interface{} `json:"data,omitempty"`
}

func gateOK(c echo.Context, data interface{}) error {
    return c.JSON(http.StatusOK, gateResult{Success: true, Data: data})
}

func gateFail(c echo.Context, reason, message string, data interface{}) error {
    return c.JSON(http.StatusOK, gateResult{Success: false, Reason: reason, Message: message, Data: data})
}
