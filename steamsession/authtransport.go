package steamsession

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// jwtRefreshMargin is how far ahead of the JWT's exp claim the cookie
// transport proactively refreshes, so a request never races an expiry
// mid-flight.
const jwtRefreshMargin = 5 * time.Minute

// bypassRefreshKey marks a request context as internal to a refresh
// operation itself, so cookieRefreshTransport doesn't try to recursively
// refresh the token while FinalizeLogin is using the same client to talk to
// steamcommunity.com.
type bypassRefreshKey struct{}

// cookieRefreshTransport is an http.RoundTripper that keeps a Session's
// steamcommunity.com cookies backed by a live access token, refreshing:
//
//   - proactively, before the JWT's exp claim is reached
//   - reactively, when Steam answers with a redirect to the login page
//     (server-side token revocation), retrying the request once
//
// The refresh mechanism is platform-dependent (see refresh below). Only
// steamcommunity.com requests are intercepted — Steam Web API calls
// authenticate via the protobuf body, not cookies, and routing them through
// here would risk a refresh loop.
type cookieRefreshTransport struct {
	base    http.RoundTripper
	session *Session

	mu     sync.Mutex
	expiry time.Time
}

func (rt *cookieRefreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != "steamcommunity.com" || req.Context().Value(bypassRefreshKey{}) != nil {
		return rt.base.RoundTrip(req)
	}

	if rt.expired() {
		if err := rt.refreshLocked(req); err != nil {
			return nil, fmt.Errorf("auto-refresh access token: %w", err)
		}
	}

	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if redirectsToLogin(resp) {
		return rt.retryOnce(req, resp)
	}
	return resp, nil
}

func (rt *cookieRefreshTransport) expired() bool {
	return time.Now().Add(jwtRefreshMargin).After(rt.expiry)
}

// refreshToken obtains a fresh access token, choosing the strategy by
// platform: a browser-type session transfers login state through
// FinalizeLogin, while a mobile-app session just asks for a new token.
func (rt *cookieRefreshTransport) refreshToken(ctx context.Context) error {
	if rt.session.platformType == PlatformTypeMobileApp {
		return rt.refreshViaAccessTokenAPI(ctx)
	}
	return rt.refreshViaFinalizeLogin(ctx)
}

func (rt *cookieRefreshTransport) refreshViaFinalizeLogin(ctx context.Context) error {
	bypassCtx := context.WithValue(ctx, bypassRefreshKey{}, true)

	if err := rt.session.FinalizeLogin(bypassCtx); err != nil {
		return err
	}

	token, err := rt.session.accessTokenFromJar()
	if err != nil {
		return fmt.Errorf("extract refreshed access token: %w", err)
	}
	rt.session.AccessToken = token

	return rt.adoptTokenExpiry(token)
}

func (rt *cookieRefreshTransport) refreshViaAccessTokenAPI(ctx context.Context) error {
	if err := rt.session.refreshAccessToken(ctx); err != nil {
		return err
	}
	rt.session.setSteamCommunityWebCookies()
	return rt.adoptTokenExpiry(rt.session.AccessToken)
}

func (rt *cookieRefreshTransport) adoptTokenExpiry(token string) error {
	exp, err := jwtExpiry(token)
	if err != nil {
		return fmt.Errorf("parse token expiry: %w", err)
	}
	rt.expiry = exp
	return nil
}

// refreshLocked refreshes under rt.mu, re-checking expiry first in case
// another request already refreshed while this one was waiting for the lock.
func (rt *cookieRefreshTransport) refreshLocked(req *http.Request) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if !rt.expired() {
		return nil
	}
	if err := rt.refreshToken(req.Context()); err != nil {
		return err
	}
	rebuildCookieHeader(req, rt.session.httpClient.Jar)
	return nil
}

// retryOnce refreshes the token and replays req exactly once after a
// login-page redirect. Falls back to the original response when the
// request body can't be replayed or the refresh itself fails.
func (rt *cookieRefreshTransport) retryOnce(req *http.Request, originalResp *http.Response) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		return originalResp, nil
	}

	rt.mu.Lock()
	err := rt.refreshToken(req.Context())
	rt.mu.Unlock()
	if err != nil {
		return originalResp, nil
	}

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return originalResp, nil
		}
		req.Body = body
	}

	rebuildCookieHeader(req, rt.session.httpClient.Jar)
	originalResp.Body.Close()

	return rt.base.RoundTrip(req)
}

// rebuildCookieHeader drops whatever Cookie header the request carries and
// rebuilds it from jar, picking up the refreshed steamLoginSecure value.
func rebuildCookieHeader(req *http.Request, jar http.CookieJar) {
	if jar == nil {
		return
	}
	req.Header.Del("Cookie")
	for _, c := range jar.Cookies(req.URL) {
		req.AddCookie(c)
	}
}

// redirectsToLogin reports whether resp is Steam's tell for server-side
// token revocation: a 302 pointing back at the login page.
func redirectsToLogin(resp *http.Response) bool {
	return resp.StatusCode == http.StatusFound && strings.Contains(resp.Header.Get("Location"), "/login")
}
