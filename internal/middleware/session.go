package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"github.com/gin-gonic/gin"
)

// CandidateTokenChecker confirms a candidate token is the active one for its session.
type CandidateTokenChecker interface {
	ValidateCandidateToken(ctx context.Context, claims *service.Claims) error
}

// CheckSingleDeviceSession rejects candidate tokens whose JTI is no longer the active one.
// Joining again from another tab rotates the JTI, so only the newest tab keeps working.
func CheckSingleDeviceSession(checker CandidateTokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only enforce for candidate tokens.
		if claims.TokenType != service.TokenTypeCandidate {
			c.Next()
			return
		}

		if err := checker.ValidateCandidateToken(c.Request.Context(), claims); err != nil {
			if errors.Is(err, service.ErrSessionInvalidated) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
				return
			}
			_ = c.Error(err)
			response.AbortFail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
			return
		}

		c.Next()
	}
}
