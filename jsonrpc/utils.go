package jsonrpc

import (
	"net"
	"net/http"
	"strings"

	"github.com/mezonai/starledger/logx"
)

// JSON-RPC Method name constants
const (
	// Chain methods
	MethodChainGetHeight = "chain.getheight"
	MethodChainValidate  = "chain.validate"

	// Block methods
	MethodBlockGetByHeight = "block.getbyheight"
	MethodBlockGetByHash   = "block.getbyhash"

	// Star methods
	MethodStarRequestValidation = "star.requestvalidation"
	MethodStarSubmit            = "star.submit"
	MethodStarGetByAddress      = "star.getbyaddress"

	// Health methods
	MethodNodeHealth = "node.health"
)

func extractClientIPFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		logx.Debug("SECURITY", "X-Forwarded-For:", xff)
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return "unknown"
}
