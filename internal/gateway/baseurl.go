package gateway

import (
	"net"
	"net/url"
	"strings"

	"github.com/unkn0wn-root/grammarviz/internal/errdef"
)

const (
	// ProductionURL serves the hosted frontend.
	ProductionURL = "https://vizualizacia-algoritmov-production.up.railway.app"
	localPort     = "8080"
	pagesSuffix   = "github.io"
)

// ResolveBaseURL maps the origin the client is launched for to the analysis
// service origin: local hosts go to the development port, the pages domain
// goes to the production service, anything else is used as given.
func ResolveBaseURL(origin string) (string, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return "", errdef.New(errdef.CodeConfig, "empty origin")
	}
	if !strings.Contains(origin, "://") {
		origin = "http://" + origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return "", errdef.Wrap(errdef.CodeConfig, err, "parse origin %q", origin)
	}
	host := u.Hostname()
	if host == "" {
		return "", errdef.New(errdef.CodeConfig, "origin %q has no host", origin)
	}
	switch {
	case host == "localhost" || host == "127.0.0.1":
		return u.Scheme + "://" + net.JoinHostPort(host, localPort), nil
	case strings.HasSuffix(host, pagesSuffix):
		return ProductionURL, nil
	default:
		return u.Scheme + "://" + u.Host, nil
	}
}
