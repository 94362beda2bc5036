package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrStaleEvent         = fmt.Errorf("event sequence not newer than last applied")
	ErrUnknownChat        = fmt.Errorf("chat is not part of any pair")
	ErrStorageUnavailable = fmt.Errorf("storage unavailable")
)
