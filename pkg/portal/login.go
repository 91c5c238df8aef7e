package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/mosfeqahamed/puprime-scraping/pkg/browser"
	errs "github.com/mosfeqahamed/puprime-scraping/pkg/errors"
	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
)

// LoginState tracks progress through the login flow.
type LoginState string

const (
	StateStart                LoginState = "start"
	StateAwaitingCredentials  LoginState = "awaiting_credentials_form"
	StateCredentialsSubmitted LoginState = "credentials_submitted"
	StateAuthenticated        LoginState = "authenticated"
	StateFailed               LoginState = "failed"
)

// LoginConfig carries everything the login flow needs. Email and Password
// come from the credential manager or environment.
type LoginConfig struct {
	LoginURL string
	Email    string
	Password string
	// LoginWait bounds how long to wait for a logged-in indicator after
	// submitting credentials.
	LoginWait time.Duration
}

// LoginFlow runs the portal login state machine once per sync run. A
// failed login is terminal for the run; there is no in-run retry.
type LoginFlow struct {
	driver   Driver
	resolver *browser.Resolver
	cfg      LoginConfig
	state    LoginState
	logger   logger.Logger
}

// NewLoginFlow builds a login flow around a driver and resolver.
func NewLoginFlow(driver Driver, resolver *browser.Resolver, cfg LoginConfig) *LoginFlow {
	if cfg.LoginWait <= 0 {
		cfg.LoginWait = 20 * time.Second
	}
	return &LoginFlow{
		driver:   driver,
		resolver: resolver,
		cfg:      cfg,
		state:    StateStart,
		logger:   logger.GetLogger().WithField("component", "login"),
	}
}

// State reports the flow's current state.
func (f *LoginFlow) State() LoginState {
	return f.state
}

// Run executes the login and, on success, captures the session bundle.
// Bundle capture is best-effort; a partial bundle is not a failure.
func (f *LoginFlow) Run(ctx context.Context) (*models.SessionBundle, error) {
	f.logger.InfoWithFields("Navigating to login page", map[string]interface{}{
		"url": f.cfg.LoginURL,
	})
	if err := f.driver.Navigate(ctx, f.cfg.LoginURL); err != nil {
		f.state = StateFailed
		return nil, errs.Wrap(errs.ErrorTypeNavigation, "failed to reach login page", err)
	}
	f.state = StateAwaitingCredentials

	emailLoc, err := f.resolveCredentialsForm(ctx)
	if err != nil {
		f.state = StateFailed
		return nil, err
	}

	passRes, err := f.resolver.Resolve(ctx, passwordFieldTarget)
	if err != nil {
		f.state = StateFailed
		return nil, err
	}
	if !passRes.Found {
		f.state = StateFailed
		return nil, errs.New(errs.ErrorTypeAuth, "password field not found on login page")
	}

	if err := f.driver.TypeHumanized(ctx, emailLoc, f.cfg.Email); err != nil {
		f.state = StateFailed
		return nil, errs.Wrap(errs.ErrorTypeAuth, "failed to enter email", err)
	}
	if err := f.driver.TypeHumanized(ctx, passRes.Locator, f.cfg.Password); err != nil {
		f.state = StateFailed
		return nil, errs.Wrap(errs.ErrorTypeAuth, "failed to enter password", err)
	}

	if err := f.submit(ctx, passRes.Locator); err != nil {
		f.state = StateFailed
		return nil, err
	}
	f.state = StateCredentialsSubmitted

	if err := f.awaitLoggedIn(ctx); err != nil {
		f.state = StateFailed
		return nil, err
	}
	f.state = StateAuthenticated
	f.logger.Info("Login successful")

	return captureSessionBundle(ctx, f.driver, f.logger), nil
}

// resolveCredentialsForm finds the email input. When the landing page hides
// the form behind a login-entry control, that control is activated and the
// lookup retried once.
func (f *LoginFlow) resolveCredentialsForm(ctx context.Context) (browser.Locator, error) {
	res, err := f.resolver.Resolve(ctx, emailFieldTarget)
	if err != nil {
		return browser.Locator{}, err
	}
	if res.Found {
		return res.Locator, nil
	}

	f.logger.Debug("Email field absent, trying login entry control")
	entry, err := f.resolver.Resolve(ctx, loginEntryTarget)
	if err != nil {
		return browser.Locator{}, err
	}
	if entry.Found {
		if err := f.driver.Click(ctx, entry.Locator); err != nil {
			f.logger.WithError(err).Warn("Could not activate login entry control")
		}
		res, err = f.resolver.Resolve(ctx, emailFieldTarget)
		if err != nil {
			return browser.Locator{}, err
		}
		if res.Found {
			return res.Locator, nil
		}
	}
	return browser.Locator{}, errs.New(errs.ErrorTypeAuth, "email field not found on login page")
}

// submit clicks a resolved submit control, falling back to Enter on the
// password field when none resolves.
func (f *LoginFlow) submit(ctx context.Context, passwordLoc browser.Locator) error {
	res, err := f.resolver.Resolve(ctx, submitTarget)
	if err != nil {
		return err
	}
	if res.Found {
		if err := f.driver.Click(ctx, res.Locator); err != nil {
			return errs.Wrap(errs.ErrorTypeAuth, "failed to activate submit control", err)
		}
		return nil
	}

	f.logger.Debug("No submit control found, sending Enter")
	if err := f.driver.PressEnter(ctx, passwordLoc); err != nil {
		return errs.Wrap(errs.ErrorTypeAuth, "implicit submit failed", err)
	}
	return nil
}

// awaitLoggedIn polls the logged-in indicator chain until one resolves or
// the bounded wait expires.
func (f *LoginFlow) awaitLoggedIn(ctx context.Context) error {
	deadline := time.Now().Add(f.cfg.LoginWait)
	for {
		res, err := f.resolver.Resolve(ctx, loggedInTarget)
		if err != nil {
			return err
		}
		if res.Found {
			f.logger.DebugWithFields("Logged-in indicator resolved", map[string]interface{}{
				"locator": res.Locator.String(),
			})
			return nil
		}
		if time.Now().After(deadline) {
			return errs.New(errs.ErrorTypeAuth,
				fmt.Sprintf("no logged-in indicator within %s", f.cfg.LoginWait))
		}
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
