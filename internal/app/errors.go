package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/hylla/jdeck/internal/events"
)

// ErrNoBoard and related errors describe actions that lack a target.
var (
	ErrNoBoard = errors.New("no board selected")
	ErrNoIssue = errors.New("no issue loaded")
)

// IsFatal reports whether err must end the event loop. Every other error is
// recoverable: the failed step is dropped and the loop continues.
func IsFatal(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, events.ErrClosed)
}

// remoteError is satisfied by resource-client errors that carry a response.
type remoteError interface {
	HTTPStatus() int
	Message() string
}

// describeError renders err for the status line.
func describeError(err error) string {
	var remote remoteError
	if errors.As(err, &remote) {
		status := remote.HTTPStatus()
		msg := remote.Message()
		switch {
		case status == 0:
			return err.Error()
		case msg == "":
			return fmt.Sprintf("request failed (%d)", status)
		default:
			return fmt.Sprintf("request failed (%d): %s", status, msg)
		}
	}
	return err.Error()
}
