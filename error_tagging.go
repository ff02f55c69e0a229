package workpool

import (
	"errors"
	"fmt"
)

// InputError correlates a job failure with the input that produced it.
// Map returns these, joined, so callers can tell which inputs failed.
type InputError struct {
	err    error
	index  int
	itemID string
}

func newInputError(err error, index int, itemID string) error {
	if err == nil {
		return nil
	}
	return &InputError{err: err, index: index, itemID: itemID}
}

func (e *InputError) Error() string { return e.err.Error() }
func (e *InputError) Unwrap() error { return e.err }

// Index returns the position of the failed input in the slice passed to Map.
func (e *InputError) Index() int { return e.index }

// ItemID returns the ID of the work item that failed, if it had one.
func (e *InputError) ItemID() (string, bool) { return e.itemID, e.itemID != "" }

func (e *InputError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "input(index=%d,item=%s): %+v", e.index, e.itemID, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractInputIndex returns the input index carried by err if present.
// For an error joined by Map it reports the first failed input.
func ExtractInputIndex(err error) (int, bool) {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Index(), true
	}
	return 0, false
}
