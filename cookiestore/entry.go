package cookiestore

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Entry is one stored cookie, identified by Domain, Path and Name.
type Entry struct {
	Name      string
	Value     string
	Domain    string
	HostOnly  bool
	Path      string
	Secure    bool
	HTTPOnly  bool
	Expires   time.Time
	CreatedAt time.Time
}

// Session reports whether the cookie has no expiry and lives until the session ends.
func (e Entry) Session() bool {
	return e.Expires.IsZero()
}

// Expired reports whether the cookie is past its expiry at now. Session cookies never expire.
func (e Entry) Expired(now time.Time) bool {
	return !e.Session() && !e.Expires.After(now)
}

// Key identifies the cookie slot the entry occupies.
func (e Entry) Key() string {
	return e.Domain + ";" + e.Path + ";" + e.Name
}

// Matches reports whether the cookie would be sent with a request to u.
func (e Entry) Matches(u *url.URL) bool {
	host := canonicalHost(u.Hostname())

	if e.HostOnly {
		if host != e.Domain {
			return false
		}
	} else if !domainMatch(host, e.Domain) {
		return false
	}

	if e.Secure && u.Scheme != "https" {
		return false
	}

	return pathMatch(requestPath(u), e.Path)
}

// ParseURL parses a cookie url. It must be absolute with a host.
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}

	if u.Scheme == "" || u.Hostname() == "" {
		return nil, errors.Join(ErrInvalidURL, errors.New(rawURL))
	}

	return u, nil
}

// ParseEntry parses a Set-Cookie value received for rawURL.
// A negative Max-Age, "Max-Age=0" or an Expires in the past yields an entry that is already expired at now.
func ParseEntry(rawURL, value string, now time.Time) (Entry, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return Entry{}, err
	}

	cookie, err := http.ParseSetCookie(value)
	if err != nil {
		return Entry{}, errors.Join(ErrInvalidCookie, err)
	}

	host := canonicalHost(u.Hostname())

	entry := Entry{
		Name:      cookie.Name,
		Value:     cookie.Value,
		Domain:    host,
		HostOnly:  true,
		Path:      cookie.Path,
		Secure:    cookie.Secure,
		HTTPOnly:  cookie.HttpOnly,
		CreatedAt: now,
	}

	if domain := canonicalHost(strings.TrimPrefix(cookie.Domain, ".")); domain != "" {
		if !domainMatch(host, domain) {
			return Entry{}, errors.Join(ErrDomainMismatch, errors.New(domain+" for "+host))
		}

		entry.Domain = domain
		entry.HostOnly = false
	}

	if entry.Path == "" || !strings.HasPrefix(entry.Path, "/") {
		entry.Path = defaultPath(u)
	}

	switch {
	case cookie.MaxAge < 0:
		entry.Expires = now
	case cookie.MaxAge > 0:
		entry.Expires = now.Add(time.Duration(cookie.MaxAge) * time.Second)
	case !cookie.Expires.IsZero():
		entry.Expires = cookie.Expires
	}

	return entry, nil
}

// CandidateHosts returns host and every parent domain that could hold cookies for it,
// most specific first. IP addresses have no parent domains.
func CandidateHosts(host string) []string {
	host = canonicalHost(host)
	if host == "" {
		return nil
	}

	if net.ParseIP(host) != nil {
		return []string{host}
	}

	candidates := []string{host}
	for {
		dot := strings.IndexByte(host, '.')
		if dot < 0 {
			break
		}

		host = host[dot+1:]
		if !strings.Contains(host, ".") {
			break
		}

		candidates = append(candidates, host)
	}

	return candidates
}

// FormatCookieHeader renders entries as a Cookie header value, "a=1; b=2", sorted by name.
func FormatCookieHeader(entries []Entry) string {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	pairs := make([]string, 0, len(sorted))
	for _, entry := range sorted {
		pairs = append(pairs, entry.Name+"="+entry.Value)
	}

	return strings.Join(pairs, "; ")
}

func canonicalHost(host string) string {
	return strings.ToLower(strings.TrimSuffix(host, "."))
}

func domainMatch(host, domain string) bool {
	if host == domain {
		return true
	}

	if net.ParseIP(host) != nil {
		return false
	}

	return strings.HasSuffix(host, "."+domain)
}

func requestPath(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}

	return u.Path
}

func defaultPath(u *url.URL) string {
	p := u.Path
	if p == "" || !strings.HasPrefix(p, "/") {
		return "/"
	}

	last := strings.LastIndexByte(p, '/')
	if last == 0 {
		return "/"
	}

	return p[:last]
}

func pathMatch(requestPath, cookiePath string) bool {
	if requestPath == cookiePath {
		return true
	}

	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}

	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}
