package service

import "time"

// Clock supplies message and conversation timestamps. Injected so tests can
// replay out-of-order arrivals deterministically; production uses time.Now.
type Clock func() time.Time
