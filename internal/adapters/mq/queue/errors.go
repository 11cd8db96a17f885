package queue

import "errors"

// ErrClosed is replied to jobs still pending when the queue shuts down.
var ErrClosed = errors.New("queue closed")
