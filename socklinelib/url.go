package socklinelib

import (
	"fmt"
	"net/url"
	"strconv"
)

// ForURL resolves a scheme://host:port address to a client. Only the tcp
// scheme is defined.
func ForURL(rawURL string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("sockline: parse %q: %w", rawURL, err)
	}
	if u.Scheme != "tcp" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		return nil, fmt.Errorf("sockline: invalid port in %q", rawURL)
	}
	return NewClient(u.Hostname(), port), nil
}
