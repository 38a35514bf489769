package vkmem

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
)

// ErrUnknownMemory is returned when a Memory handle is presented to an
// Allocator that has no record of it: either the handle was issued by a
// different Allocator, or it has already been freed.
var ErrUnknownMemory = errors.New("no outstanding allocation matches the provided memory handle")

// AllocationError indicates that the allocation engine could not reserve
// device memory matching the requested residency constraints, either because
// no memory type satisfies the required property flags or because the device
// is out of memory.
type AllocationError struct {
	// Result is the raw driver result code, passed through unchanged.
	Result common.VkResult

	cause error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("failed to reserve device memory: %s", e.Result.String())
}

func (e *AllocationError) Unwrap() error { return e.cause }

// BindError indicates that memory was successfully reserved but could not be
// bound to the target buffer. The reservation has already been released by
// the time this error is returned, so no memory is leaked.
type BindError struct {
	// Result is the raw driver result code, passed through unchanged.
	Result common.VkResult

	cause error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind reserved memory to buffer: %s", e.Result.String())
}

func (e *BindError) Unwrap() error { return e.cause }

// MapError indicates that a host mapping request failed, most commonly
// because the allocation was created device-local and does not permit
// mapping at all.
type MapError struct {
	// Result is the raw driver result code, passed through unchanged.
	Result common.VkResult

	cause error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("failed to map allocation memory: %s", e.Result.String())
}

func (e *MapError) Unwrap() error { return e.cause }
