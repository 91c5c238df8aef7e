package portal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosfeqahamed/puprime-scraping/pkg/browser"
	errs "github.com/mosfeqahamed/puprime-scraping/pkg/errors"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
)

// fakeDriver scripts a page: present selectors resolve, everything else
// misses. Clicks can mutate the page through onClick.
type fakeDriver struct {
	present map[string]bool
	onClick func(loc browser.Locator)
	evalFn  func(js string, out interface{}) error
	cookies []models.Cookie

	navigated []string
	clicked   []string
	typed     map[string]string
	entered   []string
}

func newFakeDriver(present ...string) *fakeDriver {
	d := &fakeDriver{present: map[string]bool{}, typed: map[string]string{}}
	for _, sel := range present {
		d.present[sel] = true
	}
	return d
}

func (d *fakeDriver) probe(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	if d.present[loc.Selector] {
		return nil
	}
	return errors.New("element not ready")
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	d.navigated = append(d.navigated, url)
	return nil
}

func (d *fakeDriver) CurrentURL(ctx context.Context) (string, error) {
	if len(d.navigated) == 0 {
		return "", nil
	}
	return d.navigated[len(d.navigated)-1], nil
}

func (d *fakeDriver) Click(ctx context.Context, loc browser.Locator) error {
	d.clicked = append(d.clicked, loc.Selector)
	if d.onClick != nil {
		d.onClick(loc)
	}
	return nil
}

func (d *fakeDriver) TypeHumanized(ctx context.Context, loc browser.Locator, text string) error {
	d.typed[loc.Selector] = text
	return nil
}

func (d *fakeDriver) PressEnter(ctx context.Context, loc browser.Locator) error {
	d.entered = append(d.entered, loc.Selector)
	return nil
}

func (d *fakeDriver) Eval(ctx context.Context, js string, out interface{}) error {
	if d.evalFn != nil {
		return d.evalFn(js, out)
	}
	return nil
}

func (d *fakeDriver) Cookies(ctx context.Context) ([]models.Cookie, error) {
	return d.cookies, nil
}

func loginConfig() LoginConfig {
	return LoginConfig{
		LoginURL:  "https://myaccount.puprime.com/login",
		Email:     "ib@example.com",
		Password:  "hunter2",
		LoginWait: 2 * time.Second,
	}
}

func TestLoginHappyPath(t *testing.T) {
	d := newFakeDriver(
		"input[type='email']",
		"input[type='password']",
		"button[type='submit']",
		"//div[contains(@class, 'dashboard')]",
	)
	d.cookies = []models.Cookie{{Name: "cf_session", Value: "abc"}}
	d.evalFn = func(js string, out interface{}) error {
		if strings.Contains(js, "localStorage") {
			*(out.(*map[string]string)) = map[string]string{"xtoken": "tok-123"}
		}
		return nil
	}

	flow := NewLoginFlow(d, browser.NewResolverWithProbe(d.probe, time.Second), loginConfig())
	bundle, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, flow.State())
	assert.Equal(t, "ib@example.com", d.typed["input[type='email']"])
	assert.Equal(t, "hunter2", d.typed["input[type='password']"])
	assert.Contains(t, d.clicked, "button[type='submit']")
	require.NotNil(t, bundle)
	assert.Equal(t, "tok-123", bundle.Token)
	assert.Len(t, bundle.Cookies, 1)
}

func TestLoginEntryControlRevealsForm(t *testing.T) {
	d := newFakeDriver(
		"//a[contains(text(), 'Login')]",
		"input[type='password']",
		"button[type='submit']",
		"//*[contains(text(), 'Logout')]",
	)
	d.onClick = func(loc browser.Locator) {
		if loc.Selector == "//a[contains(text(), 'Login')]" {
			d.present["input[type='email']"] = true
		}
	}

	flow := NewLoginFlow(d, browser.NewResolverWithProbe(d.probe, time.Second), loginConfig())
	_, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, flow.State())
	assert.Contains(t, d.clicked, "//a[contains(text(), 'Login')]")
}

func TestLoginMissingEmailFieldIsTerminal(t *testing.T) {
	d := newFakeDriver("input[type='password']")

	flow := NewLoginFlow(d, browser.NewResolverWithProbe(d.probe, time.Second), loginConfig())
	_, err := flow.Run(context.Background())

	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.ErrorTypeAuth, e.Type)
	assert.Equal(t, StateFailed, flow.State())
	assert.Empty(t, d.typed)
}

func TestLoginImplicitSubmitWhenNoControl(t *testing.T) {
	d := newFakeDriver(
		"input[type='email']",
		"input[type='password']",
		"//*[contains(text(), 'Dashboard')]",
	)

	flow := NewLoginFlow(d, browser.NewResolverWithProbe(d.probe, time.Second), loginConfig())
	_, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"input[type='password']"}, d.entered)
	assert.Empty(t, d.clicked)
}

func TestLoginNoIndicatorWithinWaitFails(t *testing.T) {
	d := newFakeDriver(
		"input[type='email']",
		"input[type='password']",
		"button[type='submit']",
	)

	cfg := loginConfig()
	cfg.LoginWait = 50 * time.Millisecond
	flow := NewLoginFlow(d, browser.NewResolverWithProbe(d.probe, 10*time.Millisecond), cfg)
	_, err := flow.Run(context.Background())

	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.ErrorTypeAuth, e.Type)
	assert.Equal(t, StateFailed, flow.State())
}

func TestSessionBundleTokenFallsBackToCookies(t *testing.T) {
	d := newFakeDriver(
		"input[type='email']",
		"input[type='password']",
		"button[type='submit']",
		"//*[contains(text(), 'Dashboard')]",
	)
	d.cookies = []models.Cookie{
		{Name: "theme", Value: "dark"},
		{Name: "xtoken", Value: "cookie-tok"},
	}

	flow := NewLoginFlow(d, browser.NewResolverWithProbe(d.probe, time.Second), loginConfig())
	bundle, err := flow.Run(context.Background())

	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Equal(t, "cookie-tok", bundle.Token)
}
