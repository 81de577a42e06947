package handlers

import (
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Proxy streams a remote asset through the API origin. Degraded cloud
// results point here so the browser never has to reach the remote service
// directly. Targets are restricted to the configured host allowlist.
func (a *App) Proxy(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	target, err := url.Parse(raw)
	if err != nil || target.Scheme != "https" {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid proxy target")
		return
	}
	if !a.proxyHostAllowed(target.Hostname()) {
		a.error(w, http.StatusForbidden, "forbidden", "proxy target not allowed")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid proxy target")
		return
	}
	resp, err := a.ProxyClient.Do(req)
	if err != nil {
		a.error(w, http.StatusBadGateway, "upstream", "proxy fetch failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		a.error(w, http.StatusBadGateway, "upstream", "proxy target returned "+resp.Status)
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, resp.Body)
}

func (a *App) proxyHostAllowed(host string) bool {
	for _, allowed := range a.Cfg.ProxyAllowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}
