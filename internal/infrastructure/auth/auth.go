package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/config"
	"charterhub/charter-api/internal/domain/identity"
)

const requesterKey = "requester"

// Validator validates JWTs using JWKS.
type Validator struct {
	cfg  *config.Config
	log  zerolog.Logger
	jwks *keyfunc.JWKS
}

// NewValidator initializes JWKS fetching when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	if !cfg.AuthEnabled {
		return &Validator{cfg: cfg, log: log}, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}

	return &Validator{
		cfg:  cfg,
		log:  log,
		jwks: jwks,
	}, nil
}

// Middleware resolves the requester identity for every request. With auth
// enabled it validates the bearer token against JWKS and reads the subject
// and roles from the claims; with auth disabled it trusts the X-User-ID
// header, which only makes sense behind a gateway or in development.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || !v.cfg.AuthEnabled {
		adminRole := v.adminRole()
		return func(c *gin.Context) {
			userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
			if userID == "" {
				abortUnauthorized(c, "missing X-User-ID header")
				return
			}
			admin := strings.EqualFold(strings.TrimSpace(c.GetHeader("X-User-Role")), adminRole)
			c.Set(requesterKey, identity.Requester{UserID: userID, Admin: admin})
			c.Next()
		}
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		token, err := jwt.Parse(tokenString, v.jwks.Keyfunc,
			jwt.WithIssuer(v.cfg.AuthIssuer),
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		)
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		subject, _ := claims["sub"].(string)
		if strings.TrimSpace(subject) == "" {
			abortUnauthorized(c, "token missing subject")
			return
		}

		c.Set(requesterKey, identity.Requester{
			UserID: subject,
			Admin:  hasRole(claims, v.adminRole()),
		})
		c.Next()
	}
}

// RequesterFrom returns the identity resolved by Middleware.
func RequesterFrom(c *gin.Context) (identity.Requester, bool) {
	value, exists := c.Get(requesterKey)
	if !exists {
		return identity.Requester{}, false
	}
	requester, ok := value.(identity.Requester)
	return requester, ok
}

// Ready indicates if the validator is prepared.
func (v *Validator) Ready() bool {
	if v == nil || !v.cfg.AuthEnabled {
		return true
	}
	return v.jwks != nil
}

func (v *Validator) adminRole() string {
	role := strings.TrimSpace(v.cfg.AdminRole)
	if role == "" {
		role = "admin"
	}
	return role
}

// hasRole checks realm_access.roles and the flat roles claim.
func hasRole(claims jwt.MapClaims, role string) bool {
	if realm, ok := claims["realm_access"].(map[string]any); ok {
		if matchRole(realm["roles"], role) {
			return true
		}
	}
	return matchRole(claims["roles"], role)
}

func matchRole(value any, role string) bool {
	list, ok := value.([]any)
	if !ok {
		return false
	}
	for _, entry := range list {
		if s, ok := entry.(string); ok && strings.EqualFold(s, role) {
			return true
		}
	}
	return false
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
