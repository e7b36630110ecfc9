package handlers

import "context"

var errDeadline = context.DeadlineExceeded
