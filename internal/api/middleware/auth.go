package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SubjectKey holds the token subject of an authenticated request.
const SubjectKey = "subject"

const bearerPrefix = "Bearer "

var (
	errNoAuthHeader = errors.New("authorization header required")
	errNotBearer    = errors.New("bearer token required")
	errInvalidToken = errors.New("invalid token")

	acceptedMethods = []string{jwt.SigningMethodHS256.Alg()}
)

// AuthRequired accepts requests carrying an unexpired HS256 bearer token
// signed with secret.
func AuthRequired(secret string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods(acceptedMethods), jwt.WithExpirationRequired())
	key := []byte(secret)

	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.String(http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return key, nil }); err != nil {
			c.String(http.StatusUnauthorized, errInvalidToken.Error())
			c.Abort()
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errNoAuthHeader
	}
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return "", errNotBearer
	}
	return token, nil
}
