package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/prohmpiriya/experience-marketplace/pkg/response"
)

// Context keys set by JWTMiddleware
const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "user_email"
	ContextKeyRole   = "user_role"
)

var (
	ErrMissingToken = errors.New("missing authorization token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the identity carried by an access token
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// JWTConfig configures token validation
type JWTConfig struct {
	Secret string
	// Issuer is checked when non-empty
	Issuer    string
	SkipPaths []string
}

// JWTMiddleware rejects requests without a valid bearer token
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if matchPath(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		claims, err := claimsFromRequest(c, config)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized(err.Error()))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTMiddleware attaches claims when a valid token is present and
// lets anonymous requests through. A malformed token is still rejected.
func OptionalJWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		claims, err := claimsFromRequest(c, config)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized(err.Error()))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole allows the request only when the caller has one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("authentication required"))
			return
		}
		if !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Forbidden("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// ParseToken validates an HS256 token and extracts its claims
func ParseToken(tokenString string, config *JWTConfig) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		UserID: stringClaim(mapClaims, "user_id"),
		Email:  stringClaim(mapClaims, "email"),
		Role:   stringClaim(mapClaims, "role"),
	}
	if claims.UserID == "" {
		claims.UserID = stringClaim(mapClaims, "sub")
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func claimsFromRequest(c *gin.Context, config *JWTConfig) (*Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}

	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return nil, ErrInvalidToken
	}

	return ParseToken(tokenString, config)
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyEmail, claims.Email)
	c.Set(ContextKeyRole, claims.Role)
}

// GetUserID returns the authenticated user id
func GetUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetUserRole returns the authenticated role, or "" for anonymous callers
func GetUserRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}

// GetUserEmail returns the authenticated email
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}
