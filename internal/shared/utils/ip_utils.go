package utils

import (
	"net"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// ExtractClientIP is the address written to access logs. Forwarding headers
// win over the socket peer since the API runs behind a reverse proxy.
// An unparsable peer yields "unknown".
func ExtractClientIP(c *gin.Context) string {
	candidates := []string{
		firstForwarded(c.GetHeader("X-Forwarded-For")),
		c.GetHeader("X-Real-IP"),
		hostOnly(c.Request.RemoteAddr),
	}
	for _, raw := range candidates {
		if addr, err := netip.ParseAddr(strings.TrimSpace(raw)); err == nil {
			return addr.Unmap().String()
		}
	}
	return "unknown"
}

func firstForwarded(header string) string {
	first, _, _ := strings.Cut(header, ",")
	return first
}

func hostOnly(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
