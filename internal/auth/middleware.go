package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"sunrisestay/internal/logger"
)

const (
	tokenKey    = "auth_token"
	identityKey = "auth_identity"
)

type tokenCtxKey struct{}

// WithToken returns a copy of ctx carrying the visitor's session token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// TokenFromContext returns the session token bound to ctx, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenCtxKey{}).(string)
	return token
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.TrimSpace(parts[0]) == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// SessionMiddleware reads the provider session token from the request and,
// when it verifies, binds it to the request context. Invalid or missing
// tokens leave the visitor signed out; no request is rejected here.
func SessionMiddleware(verifier Verifier) gin.HandlerFunc {
	if verifier == nil {
		verifier = PassthroughVerifier{}
	}
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			logger.Debug("ignoring session token", "error", err, "path", c.Request.URL.Path)
			c.Next()
			return
		}

		c.Set(tokenKey, token)
		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(WithToken(c.Request.Context(), token))
		c.Next()
	}
}

// RequireSignIn redirects signed-out visitors to the sign-in page.
func RequireSignIn(signInURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsSignedIn(c) {
			RedirectToSignIn(c, signInURL)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectToSignIn sends the visitor to signInURL, asking to come back to the current page.
func RedirectToSignIn(c *gin.Context, signInURL string) {
	c.Redirect(http.StatusFound, SignInLocation(signInURL, c.Request.URL.RequestURI()))
}

func SignInLocation(signInURL, returnTo string) string {
	if returnTo == "" {
		return signInURL
	}
	sep := "?"
	if strings.Contains(signInURL, "?") {
		sep = "&"
	}
	return signInURL + sep + "redirect_url=" + url.QueryEscape(returnTo)
}

func GetIdentity(c *gin.Context) (*Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*Identity)
	if !ok {
		return nil, false
	}
	return identity, true
}

func IsSignedIn(c *gin.Context) bool {
	_, ok := GetIdentity(c)
	return ok
}
