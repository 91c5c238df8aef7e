package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/mosfeqahamed/puprime-scraping/pkg/errors"
)

// scriptedProbe resolves only the selectors in present and records every
// attempt in order.
func scriptedProbe(present map[string]bool, attempts *[]string) ProbeFunc {
	return func(ctx context.Context, loc Locator, timeout time.Duration) error {
		if attempts != nil {
			*attempts = append(*attempts, loc.Selector)
		}
		if present[loc.Selector] {
			return nil
		}
		return errors.New("element not ready")
	}
}

func TestResolveFirstLocatorWins(t *testing.T) {
	var attempts []string
	r := NewResolverWithProbe(scriptedProbe(map[string]bool{
		"input[type='email']": true,
		"input[name='email']": true,
	}, &attempts), time.Second)

	res, err := r.Resolve(context.Background(), Target{
		Name: "email field",
		Locators: []Locator{
			CSS("input[type='email']"),
			CSS("input[name='email']"),
		},
	})

	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, "input[type='email']", res.Locator.Selector)
	assert.Equal(t, []string{"input[type='email']"}, attempts)
}

func TestResolveFallsBackInOrder(t *testing.T) {
	var attempts []string
	r := NewResolverWithProbe(scriptedProbe(map[string]bool{
		"//input[@placeholder='Email']": true,
	}, &attempts), time.Second)

	res, err := r.Resolve(context.Background(), Target{
		Name: "email field",
		Locators: []Locator{
			CSS("input[type='email']"),
			CSS("input[name='email']"),
			XPath("//input[@placeholder='Email']"),
		},
	})

	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, StrategyXPath, res.Locator.Strategy)
	assert.Len(t, attempts, 3)
}

func TestResolveAllMissIsNotAnError(t *testing.T) {
	r := NewResolverWithProbe(scriptedProbe(nil, nil), time.Second)

	res, err := r.Resolve(context.Background(), Target{
		Name:     "submit button",
		Locators: []Locator{CSS("button[type='submit']"), XPath("//button[contains(text(), 'Login')]")},
	})

	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestMustResolveTagsTheMiss(t *testing.T) {
	r := NewResolverWithProbe(scriptedProbe(nil, nil), time.Second)

	_, err := r.MustResolve(context.Background(), Target{
		Name:     "password field",
		Locators: []Locator{CSS("input[type='password']")},
	})

	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.ErrorTypeResolutionMiss, e.Type)
	assert.Contains(t, e.Message, "password field")
}

func TestResolveStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var attempts []string
	r := NewResolverWithProbe(scriptedProbe(nil, &attempts), time.Second)

	_, err := r.Resolve(ctx, Target{
		Name:     "anything",
		Locators: []Locator{CSS("div"), CSS("span")},
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, attempts)
}

func TestLocatorQueryKindAndString(t *testing.T) {
	assert.Equal(t, "css:table tbody tr", CSS("table tbody tr").String())
	assert.Equal(t, "xpath://a[text()='Next']", XPath("//a[text()='Next']").String())
}
