package portal

import (
	"context"
	"strings"

	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
)

// Token-like keys probed in both client storage scopes. The portal has
// stored its auth token under different names across releases.
var tokenKeys = []string{"xtoken", "token", "access_token", "accessToken"}

var sessionIDKeys = []string{"sessionId", "session_id", "sid"}

const dumpStorageJS = `(function() {
	var out = {};
	try {
		for (var i = 0; i < %SCOPE%.length; i++) {
			var k = %SCOPE%.key(i);
			out[k] = %SCOPE%.getItem(k);
		}
	} catch (e) {}
	return out;
})()`

func dumpStorage(ctx context.Context, d Driver, scope string) map[string]string {
	out := map[string]string{}
	js := strings.ReplaceAll(dumpStorageJS, "%SCOPE%", scope)
	if err := d.Eval(ctx, js, &out); err != nil {
		return nil
	}
	return out
}

// captureSessionBundle collects cookies plus any token-like values from
// local and session storage. Every field is best-effort; a partial bundle
// is returned rather than an error since the bundle is diagnostic, not a
// precondition for extraction.
func captureSessionBundle(ctx context.Context, d Driver, log logger.Logger) *models.SessionBundle {
	bundle := &models.SessionBundle{}

	if cookies, err := d.Cookies(ctx); err == nil {
		bundle.Cookies = cookies
	} else {
		log.WithError(err).Warn("Could not read cookies")
	}

	bundle.LocalStorage = dumpStorage(ctx, d, "localStorage")
	bundle.SessionStorage = dumpStorage(ctx, d, "sessionStorage")

	for _, scope := range []map[string]string{bundle.LocalStorage, bundle.SessionStorage} {
		for _, key := range tokenKeys {
			if bundle.Token == "" && scope[key] != "" {
				bundle.Token = scope[key]
			}
		}
		for _, key := range sessionIDKeys {
			if bundle.SessionID == "" && scope[key] != "" {
				bundle.SessionID = scope[key]
			}
		}
	}

	// Cookie fallback for deployments that keep the token server-set.
	if bundle.Token == "" {
		for _, c := range bundle.Cookies {
			if strings.Contains(strings.ToLower(c.Name), "token") {
				bundle.Token = c.Value
				break
			}
		}
	}

	log.InfoWithFields("Session bundle captured", map[string]interface{}{
		"cookies":     len(bundle.Cookies),
		"has_token":   bundle.Token != "",
		"has_session": bundle.SessionID != "",
	})
	return bundle
}
