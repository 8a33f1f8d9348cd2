package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/cragscan/internal/fetch"
)

// Default login settings for the climbing site.
const (
	DefaultLoginURL      = "https://www.mountainproject.com/auth/login/email"
	DefaultCheckSelector = `a[href*="/auth/logout"]`
	DefaultEmailField    = "email"
	DefaultPasswordField = "pass"
)

// Authenticator establishes a session on a fetcher.
type Authenticator interface {
	// Authenticate logs in using f. Cookies set during login must persist
	// in f for later requests.
	Authenticate(ctx context.Context, f fetch.Fetcher) error
}

// Credentials are the account used for the login.
type Credentials struct {
	Email    string
	Password string
}

// Empty reports whether no credential is set.
func (c Credentials) Empty() bool {
	return c.Email == "" && c.Password == ""
}

// LogValue implements slog.LogValuer so credentials never reach a log line.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("email_set", c.Email != ""),
		slog.Bool("password_set", c.Password != ""),
	)
}

// Anonymous skips authentication.
type Anonymous struct{}

// Authenticate implements Authenticator.
func (Anonymous) Authenticate(context.Context, fetch.Fetcher) error {
	return nil
}

// FormLogin logs in through an HTML form.
type FormLogin struct {
	creds         Credentials
	loginURL      string
	checkSelector string
	emailField    string
	passwordField string
	logger        *slog.Logger
}

// Option configures a FormLogin.
type Option func(*FormLogin)

// WithLoginURL sets the page that holds the login form.
func WithLoginURL(u string) Option {
	return func(l *FormLogin) {
		l.loginURL = u
	}
}

// WithCheckSelector sets the selector that must match the page returned
// after a successful login. An empty selector accepts any non-error
// response.
func WithCheckSelector(sel string) Option {
	return func(l *FormLogin) {
		l.checkSelector = sel
	}
}

// WithFieldNames sets the form field names for email and password.
func WithFieldNames(email, password string) Option {
	return func(l *FormLogin) {
		l.emailField = email
		l.passwordField = password
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *FormLogin) {
		l.logger = logger
	}
}

// NewFormLogin creates a FormLogin for creds.
func NewFormLogin(creds Credentials, opts ...Option) *FormLogin {
	l := &FormLogin{
		creds:         creds,
		loginURL:      DefaultLoginURL,
		checkSelector: DefaultCheckSelector,
		emailField:    DefaultEmailField,
		passwordField: DefaultPasswordField,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Authenticate implements Authenticator.
func (l *FormLogin) Authenticate(ctx context.Context, f fetch.Fetcher) error {
	if l.creds.Email == "" || l.creds.Password == "" {
		return ErrMissingCredentials
	}
	l.logger.Info("logging in", "url", l.loginURL, "credentials", l.creds)

	page, err := f.Fetch(ctx, l.loginURL)
	if err != nil {
		return fmt.Errorf("load login page: %w", err)
	}
	action, form, err := l.buildForm(page)
	if err != nil {
		return err
	}

	result, err := f.Submit(ctx, action, form)
	if err != nil {
		if errors.Is(err, fetch.ErrUnauthorized) {
			return fmt.Errorf("%w: %w", ErrLoginRejected, err)
		}
		return fmt.Errorf("submit login form: %w", err)
	}
	if err := l.verify(result); err != nil {
		return err
	}
	l.logger.Info("login succeeded")
	return nil
}

// buildForm locates the login form, copies its hidden inputs and fills in
// the credentials. It returns the absolute action URL.
func (l *FormLogin) buildForm(page *fetch.Page) (string, url.Values, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return "", nil, fmt.Errorf("parse login page: %w", err)
	}

	form := doc.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(`input[type="password"]`).Length() > 0
	}).First()
	if form.Length() == 0 {
		return "", nil, ErrLoginFormNotFound
	}

	values := url.Values{}
	form.Find(`input[type="hidden"]`).Each(func(_ int, in *goquery.Selection) {
		name, ok := in.Attr("name")
		if !ok || name == "" {
			return
		}
		values.Set(name, in.AttrOr("value", ""))
	})
	values.Set(l.emailField, l.creds.Email)
	values.Set(l.passwordField, l.creds.Password)

	action, err := resolveAction(page.URL, strings.TrimSpace(form.AttrOr("action", "")))
	if err != nil {
		return "", nil, err
	}
	return action, values, nil
}

func (l *FormLogin) verify(result *fetch.Page) error {
	if l.checkSelector == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		return fmt.Errorf("parse login result: %w", err)
	}
	if doc.Find(l.checkSelector).Length() == 0 {
		return fmt.Errorf("%w: %s not found after login", ErrLoginRejected, l.checkSelector)
	}
	return nil
}

// resolveAction resolves a form action against the page it came from. An
// empty action posts back to the page.
func resolveAction(pageURL, action string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid login page url %q: %w", pageURL, err)
	}
	if action == "" {
		return base.String(), nil
	}
	ref, err := url.Parse(action)
	if err != nil {
		return "", fmt.Errorf("invalid form action %q: %w", action, err)
	}
	return base.ResolveReference(ref).String(), nil
}
