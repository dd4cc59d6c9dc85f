package webhost

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

const (
	defaultUserAgent = "cookietap/1.0"
	defaultVersion   = "1.0.0"

	logMsgViewCreated       = "view created"
	logMsgViewReleased      = "view released"
	logMsgOriginDataDeleted = "origin data deleted"
	logAttrViewID           = "view_id"
	logAttrOrigin           = "origin"
)

// View is a host view bound to one origin.
type View struct {
	id     string
	origin string
}

// ID implements cookiehook.View.
func (v *View) ID() string {
	return v.id
}

// Origin returns the normalized origin the view was created for.
func (v *View) Origin() string {
	return v.origin
}

// Provider is the reference host platform.
type Provider struct {
	cookies cookiehook.CookieService
	statics cookiehook.Statics
	logger  cookiehook.Logger
	newID   func() string

	mu      sync.Mutex
	views   map[string]*View
	origins map[string]struct{}
}

// NewProvider creates a Provider whose CookieService accessor returns cookies.
func NewProvider(cookies cookiehook.CookieService, options ...Option) (*Provider, error) {
	if cookies == nil {
		return nil, ErrNilCookieService
	}

	p := &Provider{
		cookies: cookies,
		statics: cookiehook.Statics{UserAgent: defaultUserAgent, Version: defaultVersion},
		newID:   uuid.NewString,
		views:   make(map[string]*View),
		origins: make(map[string]struct{}),
	}

	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// CookieService implements cookiehook.Provider.
func (p *Provider) CookieService() cookiehook.CookieService {
	return p.cookies
}

// Statics implements cookiehook.Provider.
func (p *Provider) Statics() cookiehook.Statics {
	return p.statics
}

// CreateView opens a view for origin and remembers the origin as holding data.
func (p *Provider) CreateView(ctx context.Context, origin string) (cookiehook.View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized, err := NormalizeOrigin(origin)
	if err != nil {
		return nil, err
	}

	view := &View{id: p.newID(), origin: normalized}

	p.mu.Lock()
	p.views[view.id] = view
	p.origins[normalized] = struct{}{}
	p.mu.Unlock()

	p.logDebug(logMsgViewCreated, logAttrViewID, view.id, logAttrOrigin, normalized)

	return view, nil
}

// ReleaseView closes a view created by this Provider. The origin keeps its data.
func (p *Provider) ReleaseView(ctx context.Context, view cookiehook.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if view == nil {
		return ErrNilView
	}

	p.mu.Lock()
	known, ok := p.views[view.ID()]
	if ok {
		delete(p.views, view.ID())
	}
	p.mu.Unlock()

	if !ok {
		return errors.Join(ErrUnknownView, errors.New(view.ID()))
	}

	p.logDebug(logMsgViewReleased, logAttrViewID, known.id, logAttrOrigin, known.origin)

	return nil
}

// OpenViews returns the number of views not yet released.
func (p *Provider) OpenViews() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.views)
}

// StorageOrigins returns every origin holding data, sorted.
func (p *Provider) StorageOrigins(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	origins := make([]string, 0, len(p.origins))
	for origin := range p.origins {
		origins = append(origins, origin)
	}
	p.mu.Unlock()

	sort.Strings(origins)

	return origins, nil
}

// DeleteOriginData forgets the data recorded for origin. Open views of the origin stay open.
func (p *Provider) DeleteOriginData(ctx context.Context, origin string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	normalized, err := NormalizeOrigin(origin)
	if err != nil {
		return err
	}

	p.mu.Lock()
	_, ok := p.origins[normalized]
	delete(p.origins, normalized)
	p.mu.Unlock()

	if !ok {
		return errors.Join(ErrUnknownOrigin, errors.New(normalized))
	}

	p.logDebug(logMsgOriginDataDeleted, logAttrOrigin, normalized)

	return nil
}

// NormalizeOrigin reduces rawURL to its lower-cased "scheme://host[:port]" origin.
func NormalizeOrigin(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", errors.Join(ErrInvalidOrigin, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", errors.Join(ErrInvalidOrigin, errors.New(rawURL))
	}

	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

func (p *Provider) logDebug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

var _ cookiehook.Provider = (*Provider)(nil)
var _ cookiehook.View = (*View)(nil)
