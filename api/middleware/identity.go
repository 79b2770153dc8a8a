package middleware

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
)

const (
	// ClaimsHeader carries the pre-validated identity claims forwarded by
	// the fronting gateway. This service trusts it; validation happened
	// upstream.
	ClaimsHeader = "X-Identity-Claims"

	contextKeyClaims = "identity_claims"
)

// IdentityClaimsMiddleware parses the forwarded claims header, when present,
// into the request context. A missing or malformed header is not an error
// here; handlers fall back to explicit query parameters.
func IdentityClaimsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(ClaimsHeader)
		if header != "" {
			var claims map[string]string
			if err := json.Unmarshal([]byte(header), &claims); err == nil {
				c.Set(contextKeyClaims, claims)
			}
		}
		c.Next()
	}
}

// ResolveEmail returns the caller's email with claim priority: the email
// claim, then the alternate claim name, then the explicit query parameter.
func ResolveEmail(c *gin.Context) string {
	if value, exists := c.Get(contextKeyClaims); exists {
		if claims, ok := value.(map[string]string); ok {
			if email := claims["email"]; email != "" {
				return email
			}
			if email := claims["cognito:email"]; email != "" {
				return email
			}
		}
	}
	return c.Query("email")
}
