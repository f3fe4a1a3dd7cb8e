// Package browser owns the Chrome session: profile locking, login, and the
// small page primitives the rest of the bot is written against.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gofrs/flock"
	"golang.org/x/time/rate"

	"github.com/alirezadp10/ezapply/internal/model"
)

const lockFileName = ".ezapply.lock"

// Options configures a session.
type Options struct {
	Headless    bool
	UserDataDir string        // persisted Chrome profile, keeps the login cookie
	PageTimeout time.Duration // ceiling for a single page operation
	StepDelay   time.Duration // minimum gap between navigations
	UserAgent   string
}

// Session is a live Chrome instance bound to one profile directory. A file
// lock in the profile keeps two bots from sharing it.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	lock        *flock.Flock
	limiter     *rate.Limiter
	timeout     time.Duration
	stepDelay   time.Duration
	logger      *slog.Logger
}

// NewSession locks the profile directory and starts Chrome.
func NewSession(opts Options, logger *slog.Logger) (*Session, error) {
	if err := os.MkdirAll(opts.UserDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	lock := flock.New(filepath.Join(opts.UserDataDir, lockFileName))
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock profile: %w", err)
	}
	if !held {
		return nil, fmt.Errorf("profile %s is in use by another instance", opts.UserDataDir)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserDataDir(opts.UserDataDir),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		lock:        lock,
		limiter:     rate.NewLimiter(rate.Every(opts.StepDelay), 1),
		timeout:     opts.PageTimeout,
		stepDelay:   opts.StepDelay,
		logger:      logger,
	}
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return s, nil
}

// Close tears down the browser and releases the profile lock.
func (s *Session) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	return s.lock.Unlock()
}

// run executes actions against the tab under the session's page timeout. The
// caller context is only consulted for cancellation; chromedp actions must
// run on the tab context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url, waiting for the document to become ready. Navigations
// are paced by the step delay.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	s.logger.Debug("navigate", "url", url)
	err := s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return &model.NavigationError{URL: url, Err: err}
	}
	return nil
}

// Location returns the tab's current URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// OuterHTML returns the rendered markup of the first element matching sel,
// or "" when no element matches. Live widget state (the value, checked, and
// selected properties, which scripts change without touching attributes) is
// written back into attributes first so the serialized markup reflects what
// the user would see.
func (s *Session) OuterHTML(ctx context.Context, sel string) (string, error) {
	js := fmt.Sprintf(`(() => {
	const root = document.querySelector(%s);
	if (!root) return "";
	for (const el of root.querySelectorAll("input")) {
		if (el.type === "checkbox" || el.type === "radio") {
			if (el.checked) el.setAttribute("checked", "");
			else el.removeAttribute("checked");
		} else if (el.type !== "file") {
			el.setAttribute("value", el.value);
		}
	}
	for (const el of root.querySelectorAll("textarea")) {
		el.defaultValue = el.value;
	}
	for (const el of root.querySelectorAll("select option")) {
		if (el.selected) el.setAttribute("selected", "");
		else el.removeAttribute("selected");
	}
	return root.outerHTML;
})()`, strconv.Quote(sel))
	var html string
	if err := s.Eval(ctx, js, &html); err != nil {
		return "", err
	}
	return html, nil
}

// Exists reports whether an element matching sel is in the DOM.
func (s *Session) Exists(ctx context.Context, sel string) (bool, error) {
	js := fmt.Sprintf(`document.querySelector(%s) !== null`, strconv.Quote(sel))
	var found bool
	err := s.Eval(ctx, js, &found)
	return found, err
}

// ClickIfExists clicks the first element matching sel and reports whether
// anything was there to click.
func (s *Session) ClickIfExists(ctx context.Context, sel string) (bool, error) {
	js := fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	el.click();
	return true;
})()`, strconv.Quote(sel))
	var clicked bool
	if err := s.Eval(ctx, js, &clicked); err != nil {
		return false, err
	}
	if clicked {
		s.settle(ctx)
	}
	return clicked, nil
}

// BodyContains reports whether the visible page text contains needle.
func (s *Session) BodyContains(ctx context.Context, needle string) (bool, error) {
	js := fmt.Sprintf(`(document.body?.innerText ?? "").includes(%s)`, strconv.Quote(needle))
	var found bool
	err := s.Eval(ctx, js, &found)
	return found, err
}

// Eval runs js in the page and decodes the result into out.
func (s *Session) Eval(ctx context.Context, js string, out any) error {
	return s.run(ctx, chromedp.Evaluate(js, out))
}

// SendKeys clears the element matching sel and types text into it.
func (s *Session) SendKeys(ctx context.Context, sel, text string) error {
	return s.run(ctx,
		chromedp.SetValue(sel, "", chromedp.ByQuery),
		chromedp.SendKeys(sel, text, chromedp.ByQuery),
	)
}

// settle gives the page time to react to a click. Errors are ignored; this
// is a pacing aid, not a synchronization point.
func (s *Session) settle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.stepDelay):
	}
}

// Login signs the session in at baseURL. A profile that already carries a
// session cookie short-circuits without touching the form. Verification
// challenges are answered with a PIN from the fetcher when one is wired.
func (s *Session) Login(ctx context.Context, baseURL, username, password string, pins PINSource) error {
	if err := s.Navigate(ctx, baseURL+"/login"); err != nil {
		return err
	}
	loc, err := s.Location(ctx)
	if err != nil {
		return err
	}
	if loggedIn(loc) {
		s.logger.Info("session restored from profile")
		return nil
	}

	err = s.run(ctx,
		chromedp.SendKeys(`input[name="session_key"]`, username, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="session_password"]`, password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
	)
	if err != nil {
		return &model.AuthError{Reason: fmt.Sprintf("login form: %v", err)}
	}
	s.settle(ctx)

	if loc, err = s.Location(ctx); err != nil {
		return err
	}
	if isChallenge(loc) {
		if err := s.answerChallenge(ctx, pins); err != nil {
			return err
		}
		if loc, err = s.Location(ctx); err != nil {
			return err
		}
	}
	if !loggedIn(loc) {
		return &model.AuthError{Reason: "credentials rejected"}
	}
	s.logger.Info("logged in", "user", username)
	return nil
}

func (s *Session) answerChallenge(ctx context.Context, pins PINSource) error {
	if pins == nil {
		return &model.AuthError{Reason: "verification challenge with no PIN mailbox configured"}
	}
	s.logger.Info("verification challenge, waiting for PIN email")
	pin, err := pins.FetchPIN(ctx)
	if err != nil {
		return &model.AuthError{Reason: fmt.Sprintf("fetch PIN: %v", err)}
	}
	err = s.run(ctx,
		chromedp.SendKeys(`input#input__email_verification_pin`, pin, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
	)
	if err != nil {
		return &model.AuthError{Reason: fmt.Sprintf("submit PIN: %v", err)}
	}
	s.settle(ctx)
	return nil
}

func loggedIn(url string) bool {
	return strings.Contains(url, "/feed") || strings.Contains(url, "/notifications")
}

func isChallenge(url string) bool {
	return strings.Contains(url, "checkpoint") || strings.Contains(url, "challenge")
}
