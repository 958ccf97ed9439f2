package middleware

// identity.go defines helper functions shared across middleware files.
// userID feeds the rate limiter and cache key strategies: it reads the
// "user_id" value that JWTAuth stored in the Echo context and renders it
// as a string. When no user is authenticated, "guest" is returned so
// anonymous traffic shares one bucket per IP.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the Echo context. It returns
// "guest" when no user is authenticated.
func userID(c echo.Context) string {
    v := c.Get("user_id")
    if v == nil {
        return "guest"
    }
    switch id := v.(type) {
    case string:
        if id != "" {
            return id
        }
    case float64: // jwt.MapClaims decodes numbers as float64
        return fmt.Sprintf("%.0f", id)
    case uint64:
        return fmt.Sprintf("%d", id)
    }
    return "guest"
}
