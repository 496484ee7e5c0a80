package booking

import "errors"

// ErrSlotUnavailable means the requested slot is no longer bookable: it has
// slipped behind a cutoff, fallen off the calendar, or filled up.
var ErrSlotUnavailable = errors.New("slot no longer available")
