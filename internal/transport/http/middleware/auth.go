package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todo-api/internal/app"
	"todo-api/internal/metrics"
	"todo-api/internal/model"
	"todo-api/internal/transport/http/response"
)

const ContextIdentityKey = "identity"

type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*model.User, error)
}

// Authenticate resolves the bearer token into an account before the handler
// runs. Every rejection looks the same to the client.
func Authenticate(resolver IdentityResolver, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.AuthFailure("missing_token")
			response.Unauthorized(c, response.DetailCredentialsInvalid)
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, app.ErrCredentialsInvalid) {
				m.AuthFailure("credentials_invalid")
				response.Unauthorized(c, response.DetailCredentialsInvalid)
				return
			}
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.DetailInternal)
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the account set by Authenticate.
func CurrentIdentity(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*model.User)
	return identity, ok && identity != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
