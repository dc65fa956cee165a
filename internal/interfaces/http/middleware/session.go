// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/pkg/session"
)

const ownerRefKey = "owner_ref"

// Session resolves the signed session cookie and puts the cart owner
// reference on the request context. A missing or invalid cookie mints a
// fresh guest session, so every visitor has a cart from their first request.
func Session(cfg *config.Config, manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ref cart.OwnerRef

		if cookie, err := c.Cookie(cfg.Session.CookieName); err == nil {
			if claims, err := manager.Validate(cookie); err == nil {
				ref = cart.OwnerRef{CustomerID: claims.CustomerID, SessionID: claims.SessionID}
			}
		}

		if ref.SessionID == "" {
			ref.SessionID = session.NewSessionID()
			token, err := manager.Generate(ref.SessionID, nil)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to establish session",
				})
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Session.CookieName, token, int(cfg.Session.TTL.Seconds()), "/", "", cfg.Session.Secure, true)
		}

		c.Set(ownerRefKey, ref)
		c.Next()
	}
}

// OwnerRef extracts the cart owner reference placed by the Session
// middleware.
func OwnerRef(c *gin.Context) cart.OwnerRef {
	if v, ok := c.Get(ownerRefKey); ok {
		if ref, ok := v.(cart.OwnerRef); ok {
			return ref
		}
	}
	return cart.OwnerRef{}
}
