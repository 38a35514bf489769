package vkmem

import (
	"github.com/vkngwrapper/arsenal/vam"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// residencyCreateInfo builds the engine request for one of the two
// residency classes this package exposes. Usage is left unknown so the
// engine selects the first memory type satisfying the required flags,
// without re-ranking by intended usage.
func residencyCreateInfo(hostVisible bool) vam.AllocationCreateInfo {
	requiredFlags := core1_0.MemoryPropertyDeviceLocal
	if hostVisible {
		requiredFlags = core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
	}

	return vam.AllocationCreateInfo{
		Usage:         vam.MemoryUsageUnknown,
		RequiredFlags: requiredFlags,
	}
}

// AllocateMemoryForBuffer reserves device memory sized and aligned for the
// provided buffer, binds it to the buffer, and returns a handle to the new
// allocation. The buffer must remain valid until the allocation is freed;
// its lifetime is not managed here.
//
// With hostVisible set, the memory is mappable and host-coherent, so
// SetMemoryData can write to it without explicit flushes. Otherwise the
// memory is device-local and cannot be written through this Allocator.
//
// Reservation failures are returned as *AllocationError. If binding fails
// after the reservation succeeded, the reserved memory is released before
// a *BindError is returned. In both cases the raw driver result code is
// also passed back unchanged.
func (a *Allocator) AllocateMemoryForBuffer(buffer core1_0.Buffer, hostVisible bool) (Memory, common.VkResult, error) {
	a.logger.Debug("Allocator::AllocateMemoryForBuffer", slog.Bool("HostVisible", hostVisible))

	mem, res, err := a.engine.AllocateMemoryForBuffer(buffer, residencyCreateInfo(hostVisible))
	if err != nil {
		return 0, res, &AllocationError{Result: res, cause: err}
	}

	res, err = mem.BindBufferMemory(buffer)
	if err != nil {
		freeErr := mem.Free()
		if freeErr != nil {
			a.logger.Error("error releasing reserved memory after bind failure", slog.Any("error", freeErr))
		}

		return 0, res, &BindError{Result: res, cause: err}
	}

	a.nextMemory++
	handle := a.nextMemory
	a.outstanding.Put(handle, &memoryEntry{
		mem:         mem,
		hostVisible: hostVisible,
	})

	return handle, res, nil
}

// MemorySize returns the byte size of an outstanding allocation, which may
// exceed the size of the buffer it was created for due to alignment.
func (a *Allocator) MemorySize(mem Memory) (int, error) {
	entry, err := a.entryFor(mem)
	if err != nil {
		return 0, err
	}

	return entry.mem.Size(), nil
}

// IsHostVisible reports the residency class an outstanding allocation was
// created with.
func (a *Allocator) IsHostVisible(mem Memory) (bool, error) {
	entry, err := a.entryFor(mem)
	if err != nil {
		return false, err
	}

	return entry.hostVisible, nil
}
