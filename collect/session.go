package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// ErrLoginFailed is returned when the site rejects the configured
// credentials.
var ErrLoginFailed = errors.New("collect: login failed")

// Session holds a connected browser and one stealth page, logged in
// and ready to navigate. Open one session per run; it is not safe for
// concurrent navigation.
type Session struct {
	cfg    Config
	lnch   *launcher.Launcher
	brw    *rod.Browser
	page   *rod.Page
	logger *slog.Logger
}

// Open launches (or connects to) Chrome, opens a stealth page and
// ensures the session is authenticated.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Session, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{cfg: cfg, logger: logger}
	if err := s.connect(ctx); err != nil {
		return nil, err
	}
	if err := s.ensureLoggedIn(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) connect(ctx context.Context) error {
	var wsURL string

	if s.cfg.Remote != "" {
		wsURL = s.cfg.Remote
		s.logger.Info("collect: connecting to remote browser", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(s.cfg.Headless).
			UserDataDir(s.cfg.UserDataDir).
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("collect: launch browser: %w", err)
		}
		wsURL = u
		s.lnch = l
		s.logger.Info("collect: launched local browser", "headless", s.cfg.Headless)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("collect: connect browser: %w", err)
	}
	s.brw = b

	page, err := stealth.Page(b)
	if err != nil {
		return fmt.Errorf("collect: open page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width: 1400, Height: 2400,
	}); err != nil {
		s.logger.Warn("collect: set viewport failed", "error", err)
	}
	s.page = page
	return nil
}

// ensureLoggedIn checks for a live session cookie and runs the login
// form when there is none.
func (s *Session) ensureLoggedIn(ctx context.Context) error {
	if err := s.navigate(ctx, s.cfg.BaseURL+"/"); err != nil {
		return err
	}

	if s.loggedIn() {
		s.logger.Info("collect: session already authenticated")
		return nil
	}

	if s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("%w: no live session and no credentials configured", ErrLoginFailed)
	}

	s.logger.Info("collect: logging in", "user", s.cfg.Username)
	if err := s.navigate(ctx, s.cfg.BaseURL+"/accounts/login/"); err != nil {
		return err
	}
	if err := pause(ctx, s.cfg.SettleDelay); err != nil {
		return err
	}

	if err := s.fill(ctx, "input[name='username']", s.cfg.Username); err != nil {
		return fmt.Errorf("collect: username field: %w", err)
	}
	if err := s.fill(ctx, "input[name='password']", s.cfg.Password); err != nil {
		return fmt.Errorf("collect: password field: %w", err)
	}
	if err := s.click(ctx, "button[type='submit']"); err != nil {
		return fmt.Errorf("collect: submit login: %w", err)
	}
	if err := pause(ctx, 6*time.Second); err != nil {
		return err
	}

	if !s.loggedIn() {
		return ErrLoginFailed
	}
	s.logger.Info("collect: login successful")
	return nil
}

// loggedIn probes for the avatar the site renders for authenticated
// users.
func (s *Session) loggedIn() bool {
	_, err := s.page.Timeout(5 * time.Second).Element("img[alt*='profile picture']")
	return err == nil
}

func (s *Session) navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx).Timeout(s.cfg.NavTimeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("collect: navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		s.logger.Warn("collect: wait load timeout", "url", url, "error", err)
	}
	return nil
}

func (s *Session) fill(ctx context.Context, selector, value string) error {
	el, err := s.page.Context(ctx).Timeout(10 * time.Second).Element(selector)
	if err != nil {
		return err
	}
	return el.Input(value)
}

func (s *Session) click(ctx context.Context, selector string) error {
	el, err := s.page.Context(ctx).Timeout(10 * time.Second).Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// scroll advances the page by one wheel step.
func (s *Session) scroll(ctx context.Context) error {
	if err := s.page.Context(ctx).Mouse.Scroll(0, float64(s.cfg.ScrollStep), 1); err != nil {
		return fmt.Errorf("collect: scroll: %w", err)
	}
	return pause(ctx, s.cfg.ScrollDelay)
}

// anchorHrefs collects the href attribute of every element matching
// the selector.
func (s *Session) anchorHrefs(ctx context.Context, selector string) ([]string, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("collect: query anchors: %w", err)
	}
	hrefs := make([]string, 0, len(els))
	for _, el := range els {
		href, err := el.Attribute("href")
		if err != nil || href == nil || *href == "" {
			continue
		}
		hrefs = append(hrefs, *href)
	}
	return hrefs, nil
}

// Close releases the page, the browser and the launcher.
func (s *Session) Close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.brw != nil {
		_ = s.brw.Close()
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
	}
}
