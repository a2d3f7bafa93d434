package voice

import (
	"errors"
	"fmt"
)

// Authorization failures. These carry the message shown to the invoker and
// never leave any state mutated.
var (
	ErrNotInVoice     = errors.New("you must be in a voice channel")
	ErrNotOwner       = errors.New("you do not own this channel")
	ErrNotTempChannel = errors.New("this is not a temporary voice channel")
	ErrOwnerPresent   = errors.New("the current owner is still in the channel")
)

// ValidationError covers bad arguments: out-of-range limits, long names,
// self-targeting, unresolvable targets.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
