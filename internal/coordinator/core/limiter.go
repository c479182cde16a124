package core

const (
	MaxConcurrentAPICalls = 40
)

var requestLimiter = make(chan struct{}, MaxConcurrentAPICalls)

// RunWithRateLimitedConcurrency executes fn under a global semaphore so
// fan-out steps cannot flood the downstream services. The slot is
// released even when fn panics; the panic is then rethrown for the
// caller's recover.
func RunWithRateLimitedConcurrency(fn func()) {
	requestLimiter <- struct{}{}

	defer func() {
		<-requestLimiter
		if r := recover(); r != nil {
			panic(r)
		}
	}()

	fn()
}
