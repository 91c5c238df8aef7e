package portal

import "github.com/mosfeqahamed/puprime-scraping/pkg/browser"

// The portal's markup shifts between deployments, so every element is
// addressed by an ordered fallback chain. Most-specific first; the chains
// mirror the variants observed against the live portal.

var emailFieldTarget = browser.Target{
	Name: "email field",
	Locators: []browser.Locator{
		browser.CSS("input[type='email']"),
		browser.CSS("input[name='email']"),
		browser.CSS("input#email"),
		browser.CSS("input.email"),
		browser.XPath("//input[contains(@placeholder, 'mail')]"),
		browser.XPath("//input[contains(@placeholder, 'Email')]"),
		browser.XPath("//input[contains(@class, 'email')]"),
		browser.CSS("input[type='text']"),
	},
}

var passwordFieldTarget = browser.Target{
	Name: "password field",
	Locators: []browser.Locator{
		browser.CSS("input[type='password']"),
		browser.CSS("input[name='password']"),
		browser.CSS("input#password"),
	},
}

// loginEntryTarget covers landing pages that hide the credentials form
// behind a "Login" control.
var loginEntryTarget = browser.Target{
	Name: "login entry control",
	Locators: []browser.Locator{
		browser.XPath("//button[contains(text(), 'Login')]"),
		browser.XPath("//button[contains(text(), 'Sign In')]"),
		browser.XPath("//a[contains(text(), 'Login')]"),
		browser.XPath("//a[contains(@href, 'login')]"),
		browser.CSS("button.login"),
		browser.CSS("a.login"),
	},
}

var submitTarget = browser.Target{
	Name: "submit control",
	Locators: []browser.Locator{
		browser.CSS("button[type='submit']"),
		browser.XPath("//button[contains(text(), 'Login')]"),
		browser.XPath("//button[contains(text(), 'Sign In')]"),
		browser.CSS("input[type='submit']"),
	},
}

var loggedInTarget = browser.Target{
	Name: "logged-in indicator",
	Locators: []browser.Locator{
		browser.XPath("//div[contains(@class, 'dashboard')]"),
		browser.XPath("//div[contains(@class, 'account')]"),
		browser.XPath("//*[contains(text(), 'Dashboard')]"),
		browser.XPath("//*[contains(text(), 'Logout')]"),
		browser.XPath("//*[contains(text(), 'Sign Out')]"),
	},
}

// reportNavTarget is the in-portal navigation to the IB report view. A
// miss falls back to navigating the report URL directly.
var reportNavTarget = browser.Target{
	Name: "report navigation",
	Locators: []browser.Locator{
		browser.XPath("//a[contains(@href, 'ib/report')]"),
		browser.XPath("//a[contains(text(), 'Report')]"),
		browser.XPath("//span[contains(text(), 'Report')]"),
	},
}

var reportTableTarget = browser.Target{
	Name: "report table",
	Locators: []browser.Locator{
		browser.CSS("table tbody"),
		browser.CSS("div.el-table"),
		browser.CSS("table"),
	},
}

var nextPageTarget = browser.Target{
	Name: "next page control",
	Locators: []browser.Locator{
		browser.CSS("button.btn-next"),
		browser.CSS("li.el-pagination__next"),
		browser.XPath("//button[@aria-label='Next']"),
		browser.XPath("//a[contains(text(), 'Next')]"),
		browser.XPath("//li[contains(@class, 'next')]/a"),
	},
}

// rowSelectorVariants are tried in order inside the page; the first
// variant matching any rows wins.
var rowSelectorVariants = []string{
	"table tbody tr",
	"div.el-table__body-wrapper table tr",
	"table tr",
}
