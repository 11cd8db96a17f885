package render

import "errors"

// ErrNoData is returned when there are no bars to draw.
var ErrNoData = errors.New("no chart data")
