package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/model"
	"github.com/snnyvrz/locallibrary/internal/observability"
)

const (
	HeaderUserID      = "X-User-ID"
	HeaderUserName    = "X-User-Name"
	HeaderPermissions = "X-User-Permissions"

	actorKey = "library.actor"
)

// UserStore keeps the local copy of authenticated users.
type UserStore interface {
	Upsert(ctx context.Context, user *model.User) error
}

// AnyPeer trusts identity headers from every connection. Only for tests and
// deployments where nothing but the auth proxy can reach the server.
var AnyPeer = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/0"),
	netip.MustParsePrefix("::/0"),
}

// ParseTrustedProxies accepts bare addresses and CIDR ranges.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func peerTrusted(c *gin.Context, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Bits() == 0 {
			return true
		}
	}
	addr, err := netip.ParseAddr(c.RemoteIP())
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Identity reads the actor asserted by the fronting auth proxy. The
// X-User-* headers are honoured only when the connecting peer falls inside
// trusted; anyone else, and requests without a user id, continue as
// anonymous. A nil trusted list ignores the headers entirely.
func Identity(users UserStore, trusted []netip.Prefix) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" || !peerTrusted(c, trusted) {
			c.Set(actorKey, Actor{})
			c.Next()
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "INVALID_IDENTITY",
				"message": "invalid user id header",
			})
			return
		}

		actor := NewActor(id, c.GetHeader(HeaderUserName), strings.Split(c.GetHeader(HeaderPermissions), ",")...)

		if users != nil {
			user := model.User{ID: actor.ID, Username: actor.Username}
			if err := users.Upsert(c.Request.Context(), &user); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    "IDENTITY_SYNC_FAILED",
					"message": "failed to record user",
				})
				return
			}
		}

		c.Set(actorKey, actor)
		c.Set(observability.ActorKey, actor.ID.String())
		c.Next()
	}
}

// RequireLogin rejects anonymous callers.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFrom(c).Anonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "LOGIN_REQUIRED",
				"message": "authentication required",
			})
			return
		}
		c.Next()
	}
}

func ActorFrom(c *gin.Context) Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(Actor); ok {
			return a
		}
	}
	return Actor{}
}
