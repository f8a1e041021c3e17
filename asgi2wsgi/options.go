package asgi2wsgi

import (
	"time"

	"github.com/loopbridge/loopbridge/loopmgr"
)

// Option configures an Adapter at construction time.
type Option func(*config)

type config struct {
	waitTime      time.Duration
	loop          *loopmgr.Loop
	sendQueueSize int
}

func defaultConfig() config {
	return config{waitTime: 0, sendQueueSize: 10}
}

// WithWaitTime bounds how long ServeWSGI's returned BodyIterator waits,
// after being closed, for the ASGI task to finish before cancelling its
// context. d<=0 waits indefinitely.
func WithWaitTime(d time.Duration) Option {
	return func(c *config) { c.waitTime = d }
}

// WithLoop supplies a caller-owned loopmgr.Loop to launch ASGI tasks on.
// The Adapter never starts or stops an injected Loop. Without this
// option, the Adapter lazily starts and owns its own Loop.
func WithLoop(l *loopmgr.Loop) Option {
	return func(c *config) { c.loop = l }
}

// WithSendQueueSize bounds the capacity of both the request-chunk and
// response-message streams per request. n<=0 is ignored.
func WithSendQueueSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.sendQueueSize = n
		}
	}
}
