package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"coop-pos/internal/auth"
	"coop-pos/internal/models"
	"coop-pos/internal/pos"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"

	RequestIDHeader = "X-Request-ID"
)

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// Store user info in the context for the next handler (or AI Agent) to use
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// RequireRole is a secondary guard that checks for specific permissions
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ctxRole)
		for _, r := range allowed {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// Operator returns the authenticated user set by AuthMiddleware.
func Operator(c *gin.Context) (pos.Operator, bool) {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return pos.Operator{}, false
	}
	role, _ := c.Get(ctxRole)
	userID, _ := id.(uint)
	r, _ := role.(models.Role)
	return pos.Operator{UserID: userID, Role: r}, userID != 0
}

// RequestID tags every request with an id, reusing the caller's when sent,
// and threads it into the request context for the checkout logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(pos.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// clientIdleTTL is how long an IP may stay quiet before its limiter is dropped.
// A bucket refills completely within a minute, so nothing is lost.
const clientIdleTTL = 10 * time.Minute

type loginClient struct {
	lim  *rate.Limiter
	seen time.Time
}

// LoginLimiter allows perMinute attempts per client IP, with a burst of the same size.
type LoginLimiter struct {
	mu        sync.Mutex
	perMinute int
	clients   map[string]*loginClient
	lastSweep time.Time
	now       func() time.Time
}

func NewLoginLimiter(perMinute int) *LoginLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &LoginLimiter{
		perMinute: perMinute,
		clients:   make(map[string]*loginClient),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// allow records an attempt from ip and drops idle clients once per TTL.
func (l *LoginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= clientIdleTTL {
		for k, cl := range l.clients {
			if now.Sub(cl.seen) >= clientIdleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	cl, ok := l.clients[ip]
	if !ok {
		cl = &loginClient{lim: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)}
		l.clients[ip] = cl
	}
	cl.seen = now
	return cl.lim.AllowN(now, 1)
}

func (l *LoginLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts, try again later"})
			return
		}
		c.Next()
	}
}
