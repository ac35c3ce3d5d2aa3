package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"storefront-backend/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Session cookie keys.
const (
	SessionUserID = "user_id"
	SessionRole   = "user_role"
	SessionCart   = "cart_session"
)

const identityKey = "identity"

// IdentityMiddleware resolves who is calling. A bearer token wins over a
// session login; the anonymous cart key is read from the session either way.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		var id services.Identity
		if key, ok := session.Get(SessionCart).(string); ok {
			id.SessionID = key
		}

		claims, err := bearerClaims(c)
		switch {
		case errors.Is(err, errBadAuthHeader):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		case err != nil:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		case claims != nil:
			uid := claims.UserID
			id.UserID = &uid
			c.Set("user_id", claims.UserID)
			c.Set("user_role", claims.Role)
		default:
			if raw, ok := session.Get(SessionUserID).(string); ok {
				if uid, err := uuid.Parse(raw); err == nil {
					id.UserID = &uid
					c.Set("user_id", uid)
					c.Set("user_role", session.Get(SessionRole))
				}
			}
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// CurrentIdentity returns the identity resolved for this request.
func CurrentIdentity(c *gin.Context) services.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(services.Identity); ok {
			return id
		}
	}
	return services.Identity{}
}

// EnsureSession gives an anonymous caller a cart session key on its first
// cart mutation.
func EnsureSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if id.IsAuthenticated() || id.SessionID != "" {
			c.Next()
			return
		}

		session := sessions.Default(c)
		id.SessionID = newSessionKey()
		session.Set(SessionCart, id.SessionID)
		if err := session.Save(); err != nil {
			log.Printf("Failed to save session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// CartMerger moves an anonymous cart into a user's cart.
type CartMerger interface {
	MergeSessionCart(ctx context.Context, sessionID string, userID uuid.UUID) error
}

// AdoptSessionCart folds a cart left under the session key into the cart of
// an authenticated caller, which happens when a bearer client also carries
// the anonymous cookie. The key is kept on failure so a later request retries.
func AdoptSessionCart(carts CartMerger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if !id.IsAuthenticated() || id.SessionID == "" {
			c.Next()
			return
		}

		if err := carts.MergeSessionCart(c.Request.Context(), id.SessionID, *id.UserID); err != nil {
			log.Printf("Failed to merge cart of session into user %s: %v", *id.UserID, err)
			c.Next()
			return
		}

		session := sessions.Default(c)
		session.Delete(SessionCart)
		if err := session.Save(); err != nil {
			log.Printf("Failed to save session: %v", err)
		}
		id.SessionID = ""
		c.Set(identityKey, id)
		c.Next()
	}
}

func newSessionKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// LoginSession stores the user in the session and drops the anonymous cart key.
func LoginSession(c *gin.Context, userID uuid.UUID, role string) error {
	session := sessions.Default(c)
	session.Delete(SessionCart)
	session.Set(SessionUserID, userID.String())
	session.Set(SessionRole, role)
	return session.Save()
}

// LogoutSession forgets both the login and the cart key.
func LogoutSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
