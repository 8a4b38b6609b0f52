package db

import "fmt"

// Op identifies the failing store operation.
type Op string

// Store operations.
const (
	OpPing    Op = "PING"
	OpHGetAll Op = "HGETALL"
	OpHIncrBy Op = "HINCRBY"
)

// Error wraps a driver error with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
