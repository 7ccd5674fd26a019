package socklinelib

import "github.com/rs/zerolog"

// Connection callbacks run synchronously on the goroutine driving the
// transition (Open's caller for made, the receive loop for lost/eof).
// Long work should be handed off by the callback itself. A callback can
// never abort the transition it observes: panics are contained and logged.
// Lost/eof callbacks run after the loop's terminal state is published, so
// a callback may call Close on the owning client.
func runCallback(log zerolog.Logger, name string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("callback", name).Interface("panic", r).Msg("callback failed")
		}
	}()
	fn()
}
