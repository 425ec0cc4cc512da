package halerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrBusOpen is returned when a bus device file can't be opened.
	ErrBusOpen = errors.New("bus open failure")
	// ErrBusIO covers short reads/writes and ioctl failures.
	ErrBusIO = errors.New("bus I/O failure")
	// ErrInvalidArgument is returned for out-of-range channels, unknown
	// motor states and malformed user input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConfigSequence marks a failed step in a multi-step register
	// configuration sequence.
	ErrConfigSequence = errors.New("configuration sequence failure")
)

// SequenceError records which step of a device's register programming
// sequence failed.
type SequenceError struct {
	Device string
	Step   string
	Err    error
}

func (err *SequenceError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", err.Device, err.Step, err.Err)
}

func (err *SequenceError) Unwrap() error {
	return err.Err
}

// Is makes every SequenceError match ErrConfigSequence.
func (err *SequenceError) Is(target error) bool {
	return target == ErrConfigSequence
}

// Sequence wraps err as a failed step, or returns nil if err is nil.
func Sequence(device, step string, err error) error {
	if err == nil {
		return nil
	}
	return &SequenceError{Device: device, Step: step, Err: err}
}

// BusIO tags err as a bus I/O failure on the given slave address.
func BusIO(err error, addr int) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(&wrapped{cause: ErrBusIO, err: err}, "addr 0x%02x", addr)
}

// InvalidArgument formats an ErrInvalidArgument with context.
func InvalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// wrapped lets an underlying transport error keep its own message while
// still matching a sentinel with errors.Is.
type wrapped struct {
	cause error
	err   error
}

func (w *wrapped) Error() string {
	return fmt.Sprintf("%v: %v", w.cause, w.err)
}

func (w *wrapped) Unwrap() error {
	return w.err
}

func (w *wrapped) Is(target error) bool {
	return target == w.cause
}
