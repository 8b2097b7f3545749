package geo

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the originating address of req. When header is set and
// present on the request, its first comma-separated entry is used; otherwise
// the address comes from RemoteAddr. It returns nil if neither parses.
func ClientIP(req *http.Request, header string) net.IP {
	if header != "" {
		if v := req.Header.Get(header); v != "" {
			first, _, _ := strings.Cut(v, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	return net.ParseIP(host)
}
