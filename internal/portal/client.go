// Package portal reads courses, students and guardian contacts from the
// school portal. Every method follows the same shape: build the request,
// send it on the logged-in session, check the status, then pick the page
// apart with goquery.
package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/gradesync/pkg/errors"
	"github.com/noah-isme/gradesync/pkg/config"
)

// Portal endpoints, relative to the configured base URL.
const (
	loginPath        = "/portal/auth/login.do"
	classSearchPath  = "/portal/class/search.do?text="
	classStudentPath = "/portal/studentsuccess/studentSuccessMonitoringTable.do?classId=%d"
	studentInfoPath  = "/portal/gb/student/%d/gbInfo.do"
)

// RetryFunc runs one portal step and decides whether a failure is retried.
type RetryFunc func(ctx context.Context, step string, fn func(ctx context.Context) error) error

// Option customises a Client.
type Option func(*Client)

// WithRetry wraps every roster step with retry.
func WithRetry(retry RetryFunc) Option {
	return func(c *Client) {
		if retry != nil {
			c.retry = retry
		}
	}
}

// Client is a cookie session on the portal.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	retry   RetryFunc
}

// New builds a Client. The login redirect is what tells success apart from
// a failed attempt, so redirects are never followed.
func New(cfg config.PortalConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
		retry:  runOnce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func runOnce(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Login opens a session. The portal answers a good login with a redirect
// and a bad one by serving the form again.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusFound:
		c.logger.Debug("portal session opened", zap.String("user", username))
		return nil
	case http.StatusOK:
		return appErrors.ErrInvalidCredentials
	default:
		return unexpectedStatus(resp)
	}
}

// fetch GETs path and parses the body as HTML.
func (c *Client) fetch(ctx context.Context, path string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, unexpectedStatus(resp)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func unexpectedStatus(resp *http.Response) error {
	return appErrors.Clone(appErrors.ErrUnexpectedStatus,
		fmt.Sprintf("unexpected portal status %d for %s", resp.StatusCode, resp.Request.URL.Path))
}
