package speech

import (
	"context"
	"sync"
)

// Capture is the exclusive handle on the recognizer. Whoever holds it owns
// the microphone until Stop is called or the recognition ends.
type Capture struct {
	engine *Engine
	cancel context.CancelFunc
	once   sync.Once
}

// Stop aborts the recognition and releases the handle. Calling it more than
// once is a no-op.
func (c *Capture) Stop() {
	c.once.Do(func() {
		c.cancel()
		c.engine.release(c)
	})
}
