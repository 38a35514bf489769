package vkmem

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// SetMemoryData synchronously copies data into the backing memory of an
// outstanding allocation, starting at offset 0. The allocation must have
// been created host-visible; attempting to write a device-local allocation
// fails with *MapError and leaves the allocation untouched. Host-visible
// memory is coherent, so the write is visible to the device as soon as this
// returns.
//
// len(data) may not exceed the allocation's byte size; oversize writes are
// rejected before any memory is mapped.
func (a *Allocator) SetMemoryData(mem Memory, data []byte) (common.VkResult, error) {
	a.logger.Debug("Allocator::SetMemoryData", slog.Int("Size", len(data)))

	entry, err := a.entryFor(mem)
	if err != nil {
		return core1_0.VKErrorUnknown, err
	}

	if len(data) > entry.mem.Size() {
		return core1_0.VKErrorUnknown, errors.Newf("attempted to write %d bytes into an allocation of only %d bytes", len(data), entry.mem.Size())
	}

	ptr, res, err := entry.mem.Map()
	if err != nil || ptr == nil {
		return res, &MapError{Result: res, cause: err}
	}

	dst := unsafe.Slice((*byte)(ptr), entry.mem.Size())
	copy(dst, data)

	err = entry.mem.Unmap()
	if err != nil {
		return core1_0.VKErrorUnknown, err
	}

	return res, nil
}
