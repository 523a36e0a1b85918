package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msdss/data-api/cmd/data-api/models"
	"github.com/msdss/data-api/internal"
)

// User is the authenticated caller of a request.
type User struct {
	Name      string
	Superuser bool
}

// Provider resolves the current user of a request. A nil user means the API
// runs in open mode without accounts, in which case no scope is enforced.
type Provider interface {
	CurrentUser(c *gin.Context) *User
}

// AccountProvider resolves users from gin's basic auth context. Superusers
// are flagged by account name.
type AccountProvider struct {
	superusers map[string]bool
}

func NewAccountProvider(superusers []string) *AccountProvider {
	flagged := make(map[string]bool, len(superusers))
	for _, name := range superusers {
		flagged[name] = true
	}
	return &AccountProvider{superusers: flagged}
}

func (p *AccountProvider) CurrentUser(c *gin.Context) *User {
	name := c.GetString(gin.AuthUserKey)
	if name == "" {
		return nil
	}
	return &User{Name: name, Superuser: p.superusers[name]}
}

// AnonymousProvider is used when no accounts are configured.
type AnonymousProvider struct{}

func (AnonymousProvider) CurrentUser(c *gin.Context) *User {
	return nil
}

// RequireScope enforces a route's auth scope before its handler runs.
// Currently only the superuser requirement is understood; unknown scope keys
// pass through untouched.
func RequireScope(provider Provider, scope models.AuthScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !scope.Superuser() {
			c.Next()
			return
		}
		user := provider.CurrentUser(c)
		if user != nil && !user.Superuser {
			zap.S().Infof("User %s unauthorized to access %s", internal.SanitizeString(user.Name), c.FullPath())
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{
					"error":   "forbidden",
					"status":  http.StatusUnauthorized,
					"message": "This route requires a superuser account.",
				})
			return
		}
		c.Next()
	}
}
