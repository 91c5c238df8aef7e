package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
)

// testSession builds a session that never started a browser, so Release
// only exercises registry bookkeeping and idempotence.
func testSession() *Session {
	return &Session{
		ctx:         context.Background(),
		cancelCtx:   func() {},
		cancelAlloc: func() {},
		logger:      logger.NewNopLogger(),
	}
}

func TestReleaseAllForceReleasesEverySession(t *testing.T) {
	base := ActiveSessions()

	a := testSession()
	b := testSession()
	defaultRegistry.add(a)
	defaultRegistry.add(b)
	assert.Equal(t, base+2, ActiveSessions())

	ReleaseAll()
	assert.Equal(t, base, ActiveSessions())
}

func TestReleaseIsIdempotent(t *testing.T) {
	s := testSession()
	defaultRegistry.add(s)

	s.Release()
	s.Release()
	ReleaseAll()

	assert.NotPanics(t, func() { s.Release() })
}
