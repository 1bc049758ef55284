// Package httpx holds the gin middleware shared by the storefront routes.
package httpx

import (
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/MikeMC777/nolimits-storefront/internal/product"
	"github.com/MikeMC777/nolimits-storefront/internal/storage"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderSession   = "X-Session-ID"
	CookieSession   = "nl_session"

	ctxRequestID     = "rid"
	ctxSession       = "session"
	ctxSessionCookie = "session_cookie"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

// Logger writes one access line per request.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("rid", c.GetString(ctxRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
		}
		if sid := c.GetString(ctxSession); sid != "" {
			fields = append(fields, zap.String("session", Fingerprint(sid)))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("[http]", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("[http]", fields...)
		default:
			log.Info("[http]", fields...)
		}
	}
}

// Session resolves the storefront session from the X-Session-ID header or
// the nl_session cookie, issuing a new cookie when neither holds a valid id.
// The id is never echoed in a response header.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetHeader(HeaderSession)
		fromCookie := false
		if sid == "" {
			sid, _ = c.Cookie(CookieSession)
			fromCookie = true
		}
		if !storage.ValidNamespace(sid) {
			sid = uuid.NewString()
			fromCookie = true
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieSession, sid, int((365 * 24 * time.Hour).Seconds()), "/", "", false, true)
		}
		c.Set(ctxSession, sid)
		c.Set(ctxSessionCookie, fromCookie)
		c.Next()
	}
}

// SessionID returns the id set by Session.
func SessionID(c *gin.Context) string { return c.GetString(ctxSession) }

// IsCookieSession reports whether the session travels in the HttpOnly cookie.
// Only those sessions hold a remembered token.
func IsCookieSession(c *gin.Context) bool { return c.GetBool(ctxSessionCookie) }

// Fingerprint is the form a session id takes in logs.
func Fingerprint(sid string) string {
	sum := blake2b.Sum256([]byte(sid))
	return hex.EncodeToString(sum[:8])
}

// Bearer forwards the caller's token to the backend. For cookie sessions a
// token sent in the Authorization header is remembered and reused by later
// requests without one. A session named only by the X-Session-ID header never
// reads or stores a token.
func Bearer(backend storage.Backend, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kv := storage.Bind(backend, SessionID(c))
		ctx := c.Request.Context()
		remember := IsCookieSession(c)

		tok := strings.TrimSpace(c.GetHeader("Authorization"))
		if strings.HasPrefix(strings.ToLower(tok), "bearer ") {
			tok = strings.TrimSpace(tok[len("bearer "):])
		} else {
			tok = ""
		}

		switch {
		case !remember:
		case tok != "":
			if err := kv.Save(ctx, storage.KeyToken, []byte(tok)); err != nil {
				log.Warn("token not saved", zap.Error(err))
			}
		default:
			b, err := kv.Load(ctx, storage.KeyToken)
			switch {
			case err == nil:
				tok = string(b)
			case !errors.Is(err, storage.ErrNotFound):
				log.Warn("token not loaded", zap.Error(err))
			}
		}

		if tok != "" {
			c.Request = c.Request.WithContext(product.WithBearer(ctx, tok))
		}
		c.Next()
	}
}

// Logout drops the token remembered for the session. Later requests are
// anonymous unless they send a token again.
func Logout(backend storage.Backend, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := storage.Bind(backend, SessionID(c)).Remove(c.Request.Context(), storage.KeyToken)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Warn("token not removed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, product.HTTPError{Error: "No se pudo cerrar la sesión"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
