package portal

import (
	"context"

	"github.com/mosfeqahamed/puprime-scraping/pkg/browser"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
)

// Driver is the browser surface the portal flows need. browser.Session
// satisfies it; tests substitute scripted fakes.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Click(ctx context.Context, loc browser.Locator) error
	TypeHumanized(ctx context.Context, loc browser.Locator, text string) error
	PressEnter(ctx context.Context, loc browser.Locator) error
	Eval(ctx context.Context, js string, out interface{}) error
	Cookies(ctx context.Context) ([]models.Cookie, error)
}
