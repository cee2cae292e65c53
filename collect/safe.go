package collect

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// ErrPrivateHost is returned when a fetch URL resolves to a private or
// loopback address. The fallback fetcher only talks to the public web.
var ErrPrivateHost = errors.New("collect: URL targets a private or loopback address")

// ErrBadScheme is returned when a fetch URL is not http or https.
var ErrBadScheme = errors.New("collect: only http and https schemes are allowed")

// checkFetchURL validates a candidate URL before the plain HTTP fetcher
// touches it. Candidate IDs come from scraped anchor hrefs, so they are
// untrusted input; this blocks schemes other than http(s) and hosts that
// resolve to private address space.
func checkFetchURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("collect: invalid URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrBadScheme
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("collect: URL has no host")
	}

	if ip := net.ParseIP(host); ip != nil {
		if privateIP(ip) {
			return ErrPrivateHost
		}
		return nil
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		// Unresolvable now may be resolvable at connect time; the fetch
		// itself will surface the network error.
		return nil
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && privateIP(ip) {
			return ErrPrivateHost
		}
	}
	return nil
}

// boundedReadAll reads at most maxBytes from r and errors when the body
// exceeds the cap instead of silently truncating it.
func boundedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("collect: response exceeds %d bytes", maxBytes)
	}
	return data, nil
}

func privateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	for _, network := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"fc00::/7",
		"::1/128",
	} {
		_, cidr, err := net.ParseCIDR(network)
		if err != nil {
			continue
		}
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
