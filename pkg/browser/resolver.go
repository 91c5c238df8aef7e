package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	errs "github.com/mosfeqahamed/puprime-scraping/pkg/errors"
	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
)

// Strategy identifies how a selector string is interpreted.
type Strategy string

const (
	// StrategyCSS interprets the selector as a CSS query.
	StrategyCSS Strategy = "css"
	// StrategyXPath interprets the selector as an XPath expression.
	StrategyXPath Strategy = "xpath"
)

// Locator is a single addressing attempt for a page element.
type Locator struct {
	Strategy Strategy
	Selector string
}

func (l Locator) queryOptions() []chromedp.QueryOption {
	if l.Strategy == StrategyXPath {
		return []chromedp.QueryOption{chromedp.BySearch}
	}
	return []chromedp.QueryOption{chromedp.ByQuery}
}

func (l Locator) String() string {
	return fmt.Sprintf("%s:%s", l.Strategy, l.Selector)
}

// CSS builds a CSS locator.
func CSS(selector string) Locator {
	return Locator{Strategy: StrategyCSS, Selector: selector}
}

// XPath builds an XPath locator.
func XPath(expr string) Locator {
	return Locator{Strategy: StrategyXPath, Selector: expr}
}

// Target is a named page element addressed by an ordered fallback list of
// locators. The order encodes preference; the first locator that resolves
// wins.
type Target struct {
	Name     string
	Locators []Locator
}

// Resolution reports the outcome of resolving a Target. Found is false when
// every locator failed; Locator is only meaningful when Found is true.
type Resolution struct {
	Found   bool
	Locator Locator
}

// ProbeFunc checks whether a single locator currently addresses a ready
// element. Session.probe is the production implementation.
type ProbeFunc func(ctx context.Context, loc Locator, timeout time.Duration) error

// Resolver tries each locator of a target in order with a short per-attempt
// timeout. Locator misses are an expected, non-exceptional outcome so the
// caller can fall back or degrade rather than abort.
type Resolver struct {
	probe   ProbeFunc
	timeout time.Duration
	logger  logger.Logger
}

// NewResolver builds a resolver backed by the session's element probe.
func NewResolver(sess *Session, stepTimeout time.Duration) *Resolver {
	return NewResolverWithProbe(sess.probe, stepTimeout)
}

// NewResolverWithProbe builds a resolver around an arbitrary probe. Tests
// use this to resolve against scripted page states.
func NewResolverWithProbe(probe ProbeFunc, stepTimeout time.Duration) *Resolver {
	if stepTimeout <= 0 {
		stepTimeout = 3 * time.Second
	}
	return &Resolver{
		probe:   probe,
		timeout: stepTimeout,
		logger:  logger.GetLogger().WithField("component", "resolver"),
	}
}

// Resolve tries the target's locators in order and returns the first that
// addresses a ready element. All-miss is reported through Resolution, not
// an error; the error return is reserved for context cancellation.
func (r *Resolver) Resolve(ctx context.Context, target Target) (Resolution, error) {
	for _, loc := range target.Locators {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}
		if err := r.probe(ctx, loc, r.timeout); err != nil {
			r.logger.DebugWithFields("Locator miss", map[string]interface{}{
				"target":  target.Name,
				"locator": loc.String(),
			})
			continue
		}
		return Resolution{Found: true, Locator: loc}, nil
	}

	r.logger.WarnWithFields("Element not found by any locator", map[string]interface{}{
		"target":   target.Name,
		"locators": len(target.Locators),
	})
	return Resolution{}, nil
}

// MustResolve is Resolve for elements the caller cannot proceed without.
// An all-miss comes back as a resolution miss error naming the target.
func (r *Resolver) MustResolve(ctx context.Context, target Target) (Locator, error) {
	res, err := r.Resolve(ctx, target)
	if err != nil {
		return Locator{}, err
	}
	if !res.Found {
		return Locator{}, errs.New(errs.ErrorTypeResolutionMiss,
			fmt.Sprintf("no locator resolved element %q", target.Name))
	}
	return res.Locator, nil
}
