package harness

import "fmt"

// ChannelMismatchError reports a stream that does not fit the package: an
// unknown channel name, a wrong-direction channel, or a value whose type
// disagrees with the channel's element type.  It aborts the whole run.
type ChannelMismatchError struct {
	Channel string
	Msg     string
}

func (e *ChannelMismatchError) Error() string {
	return fmt.Sprintf("channel %s: %s", e.Channel, e.Msg)
}
