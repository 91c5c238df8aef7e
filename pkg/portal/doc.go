// Package portal drives the PU Prime client portal: the login state
// machine, authenticated session artifact capture, and the paginated
// referral report extractor.
//
// All browser interaction goes through the small Driver interface so the
// flows can be exercised against scripted fakes. The production Driver is
// browser.Session.
package portal
