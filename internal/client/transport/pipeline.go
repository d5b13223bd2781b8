package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/token"
)

// DefaultTimeout bounds a single request. It is deliberately generous: the
// itinerary-generation endpoints can take minutes to answer.
const DefaultTimeout = 5 * time.Minute

// RefreshPath is the token-exchange endpoint. Field capitalization of its
// response body is fixed by the backend and must be read as returned.
const RefreshPath = "/api/Authentication/refresh"

// InvalidateFunc receives the cause when the pipeline tears the session
// down. The application shell subscribes and translates it into navigation;
// the pipeline itself never navigates.
type InvalidateFunc func(cause error)

// Pipeline sends every outbound request: it attaches the current access
// token, recovers from a single 401 by exchanging the refresh token and
// replaying the request exactly once, and propagates every other failure
// untouched. It is the only component allowed to clear the token store as a
// failure consequence.
type Pipeline struct {
	base         *http.Client
	baseURL      string
	tokens       *token.Store
	log          *zap.Logger
	onInvalidate InvalidateFunc
	singleFlight bool

	refreshMu sync.Mutex
	inflight  *refreshCall
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.base = c }
}

// WithInvalidateHook registers the session-invalidated handler.
func WithInvalidateHook(fn InvalidateFunc) Option {
	return func(p *Pipeline) { p.onInvalidate = fn }
}

// WithoutSingleFlight disables refresh de-duplication, letting each
// concurrent 401 run its own exchange. The backend's refresh endpoint is
// expected to tolerate this per device, but it is not verified; the shared
// exchange is the default.
func WithoutSingleFlight() Option {
	return func(p *Pipeline) { p.singleFlight = false }
}

// New builds a Pipeline over the given base URL and token store.
func New(baseURL string, tokens *token.Store, log *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		base:         &http.Client{Timeout: DefaultTimeout},
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokens:       tokens,
		log:          log,
		singleFlight: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// attempt carries a request through the pipeline together with its retry
// budget. The body is buffered so a replay re-sends identical bytes. The
// retried flag is internal; callers never see it.
type attempt struct {
	method      string
	path        string
	body        []byte
	contentType string
	retried     bool
	// usedToken is the access token the last dispatch carried, so a 401 can
	// tell whether the stored credentials already moved on.
	usedToken string
}

// JSON sends a request with an optional JSON body and decodes a JSON
// response into out (which may be nil). Non-2xx responses become APIErrors;
// network failures propagate verbatim.
func (p *Pipeline) JSON(ctx context.Context, method, path string, in, out any) error {
	a := &attempt{method: method, path: path}
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		a.body = buf
		a.contentType = "application/json"
	}
	return p.send(ctx, a, out)
}

// Upload sends a multipart form with a single file part plus optional text
// fields, decoding a JSON response into out. Used by the image endpoints.
func (p *Pipeline) Upload(ctx context.Context, path, field, filename string, file io.Reader, fields map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	a := &attempt{method: http.MethodPost, path: path, body: buf.Bytes(), contentType: w.FormDataContentType()}
	return p.send(ctx, a, out)
}

// send runs one attempt through the pipeline, handling the 401 interception.
// A request that has already been replayed propagates any further failure
// as-is; a second refresh cycle is never triggered.
func (p *Pipeline) send(ctx context.Context, a *attempt, out any) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	// Proactive refresh: a locally-expired JWT will be rejected anyway, so
	// exchange it up front and save the round trip. Opaque tokens skip this.
	if creds := p.tokens.Get(); creds.AccessToken != "" && tokenExpired(creds.AccessToken) && !a.retried {
		a.retried = true
		if err := p.refresh(ctx, creds.AccessToken); err != nil {
			return p.invalidate(a, err)
		}
	}

	resp, err := p.dispatch(ctx, a)
	if err != nil {
		// Network-class failure: no retry, no session side effects.
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !a.retried {
		a.retried = true
		io.Copy(io.Discard, resp.Body)
		if err := p.refresh(ctx, a.usedToken); err != nil {
			return p.invalidate(a, err)
		}
		resp2, err := p.dispatch(ctx, a)
		if err != nil {
			return err
		}
		defer resp2.Body.Close()
		return p.consume(a, resp2, out)
	}

	return p.consume(a, resp, out)
}

// dispatch builds and performs the HTTP request, injecting the current
// access token when one is present.
func (p *Pipeline) dispatch(ctx context.Context, a *attempt) (*http.Response, error) {
	var body io.Reader
	if a.body != nil {
		body = bytes.NewReader(a.body)
	}
	req, err := http.NewRequestWithContext(ctx, a.method, p.baseURL+a.path, body)
	if err != nil {
		return nil, err
	}
	if a.contentType != "" {
		req.Header.Set("Content-Type", a.contentType)
	}
	if creds := p.tokens.Get(); creds.AccessToken != "" {
		a.usedToken = creds.AccessToken
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}
	return p.base.Do(req)
}

// consume turns the response into the caller's result: decoded JSON on
// success, an APIError otherwise.
func (p *Pipeline) consume(a *attempt, resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		buf, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Method: a.method, Path: a.path, Body: strings.TrimSpace(string(buf))}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%s %s: decode response: %w", a.method, a.path, err)
	}
	return nil
}

// refreshCall is one in-flight refresh exchange shared by concurrent 401s.
type refreshCall struct {
	done chan struct{}
	err  error
}

// refresh runs the refresh-token exchange. With single-flight enabled
// (default), concurrent callers await one shared exchange instead of
// issuing N near-simultaneous ones. staleToken is the access token the
// failed request carried: if the store already holds a different one,
// another caller refreshed in the meantime and no exchange is needed.
func (p *Pipeline) refresh(ctx context.Context, staleToken string) error {
	if staleToken != "" && p.tokens.Get().AccessToken != staleToken {
		return nil
	}
	if !p.singleFlight {
		return p.doRefresh(ctx)
	}

	p.refreshMu.Lock()
	if call := p.inflight; call != nil {
		p.refreshMu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if staleToken != "" && p.tokens.Get().AccessToken != staleToken {
		p.refreshMu.Unlock()
		return nil
	}
	call := &refreshCall{done: make(chan struct{})}
	p.inflight = call
	p.refreshMu.Unlock()

	call.err = p.doRefresh(ctx)
	close(call.done)

	p.refreshMu.Lock()
	p.inflight = nil
	p.refreshMu.Unlock()
	return call.err
}

// doRefresh performs one exchange: read refresh material, call the refresh
// endpoint without bearer auth, and atomically store the returned pair. A
// missing refresh token or device id fails immediately without any network
// call.
func (p *Pipeline) doRefresh(ctx context.Context) error {
	creds := p.tokens.Get()
	if creds.RefreshToken == "" || creds.DeviceID == "" {
		return ErrNoRefreshCredentials
	}

	body, err := json.Marshal(map[string]string{
		"refreshToken": creds.RefreshToken,
		"deviceId":     creds.DeviceID,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+RefreshPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.base.Do(req)
	if err != nil {
		return fmt.Errorf("refresh exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Method: http.MethodPost, Path: RefreshPath, Body: strings.TrimSpace(string(buf))}
	}

	// Field capitalization follows the backend's response exactly.
	var pair struct {
		AccessToken  string `json:"AccessToken"`
		RefreshToken string `json:"RefreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return fmt.Errorf("refresh exchange: decode response: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("refresh exchange: backend returned an incomplete token pair")
	}

	return p.tokens.Set(token.Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		DeviceID:     creds.DeviceID,
	})
}

// invalidate tears the session down after a failed refresh: credentials are
// cleared, the shell is notified, and the caller receives the refresh
// failure rather than the intercepted 401.
func (p *Pipeline) invalidate(a *attempt, cause error) error {
	if err := p.tokens.Clear(); err != nil {
		p.log.Error("failed to clear token store", zap.Error(err))
	}
	p.log.Warn("session invalidated",
		zap.String("method", a.method),
		zap.String("path", a.path),
		zap.Error(cause),
	)
	wrapped := &SessionInvalidatedError{Cause: cause}
	if p.onInvalidate != nil {
		p.onInvalidate(wrapped)
	}
	return wrapped
}

// tokenExpired reports whether the access token is a JWT whose exp claim
// has passed. Tokens that do not parse as JWTs are treated as live and left
// to the backend to judge.
func tokenExpired(accessToken string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
