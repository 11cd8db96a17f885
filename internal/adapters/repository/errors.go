package repository

import "errors"

// ErrCapacityExceeded is returned by Append on a bounded, full store.
var ErrCapacityExceeded = errors.New("leaderboard store capacity exceeded")
