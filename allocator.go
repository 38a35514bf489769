// Package vkmem provides a small façade over Vulkan device-memory
// management for buffer resources. It binds an allocation engine to a
// single logical device and exposes allocate, write, and free operations
// through opaque Memory handles, so consumers do not deal with memory-type
// enumeration, alignment, or the map/unmap protocol directly.
//
// Suballocation strategy is delegated entirely to
// github.com/vkngwrapper/arsenal/vam; this package adds ownership tracking
// on top of it. An Allocator and the handles it issues must be used from a
// single goroutine at a time; no internal synchronization is performed.
package vkmem

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/arsenal/vam"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
	"golang.org/x/exp/slog"
)

// Memory is an opaque handle to one outstanding device-memory allocation.
// It is only meaningful to the Allocator that issued it and becomes invalid
// once freed.
type Memory uint64

type memoryEntry struct {
	mem         boundMemory
	hostVisible bool
}

// CreateOptions contains optional settings when creating an Allocator. All
// fields may be left blank; they are passed through to the underlying
// engine.
type CreateOptions struct {
	// PreferredLargeHeapBlockSize is the block size the engine uses when
	// allocating from heaps larger than a gigabyte
	PreferredLargeHeapBlockSize int

	// VulkanCallbacks is an optional set of callbacks that will be executed
	// from Vulkan on memory created from this allocator
	VulkanCallbacks *driver.AllocationCallbacks

	// HeapSizeLimits optionally caps the number of bytes allocated from each
	// device memory heap. When provided it must contain one entry per heap
	// in the PhysicalDevice, each either a byte limit or -1 for no limit.
	HeapSizeLimits []int

	// ExternalMemoryHandleTypes optionally selects external memory handle
	// types per memory type in the PhysicalDevice. When provided it must
	// contain one entry per memory type, each either 0 or a handle type.
	ExternalMemoryHandleTypes []khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags
}

// Allocator issues and tracks device-memory allocations for a single
// logical device. Every Memory handle it returns is registered internally
// until freed, so misuse such as double-free or free-through-the-wrong-
// allocator is reported instead of corrupting driver state.
type Allocator struct {
	logger              *slog.Logger
	instance            core1_0.Instance
	physicalDevice      core1_0.PhysicalDevice
	device              core1_0.Device
	allocationCallbacks *driver.AllocationCallbacks

	engine      memoryEngine
	outstanding *swiss.Map[Memory, *memoryEntry]
	nextMemory  Memory
}

// New creates an Allocator bound to the provided device handles.
//
// instance - The Instance that owns the provided Device
//
// physicalDevice - The PhysicalDevice that owns the provided Device
//
// device - The Device that memory will be allocated into
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, instance core1_0.Instance, physicalDevice core1_0.PhysicalDevice, device core1_0.Device, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		return nil, errors.New("attempted to create an allocator with a nil logger")
	}

	engine, err := vam.New(logger, instance, physicalDevice, device, vam.CreateOptions{
		PreferredLargeHeapBlockSize: options.PreferredLargeHeapBlockSize,
		VulkanCallbacks:             options.VulkanCallbacks,
		HeapSizeLimits:              options.HeapSizeLimits,
		ExternalMemoryHandleTypes:   options.ExternalMemoryHandleTypes,
	})
	if err != nil {
		return nil, err
	}

	allocator := newAllocator(logger, &vamEngine{allocator: engine})
	allocator.instance = instance
	allocator.physicalDevice = physicalDevice
	allocator.device = device
	allocator.allocationCallbacks = options.VulkanCallbacks

	return allocator, nil
}

func newAllocator(logger *slog.Logger, engine memoryEngine) *Allocator {
	return &Allocator{
		logger:      logger,
		engine:      engine,
		outstanding: swiss.NewMap[Memory, *memoryEntry](42),
	}
}

// Destroy releases the Allocator and the engine state behind it. Every
// Memory handle issued by this Allocator must have been freed first: if any
// allocation is still outstanding, Destroy fails without releasing
// anything.
func (a *Allocator) Destroy() error {
	a.logger.Debug("Allocator::Destroy")

	if a.outstanding.Count() > 0 {
		return errors.Newf("attempted to destroy an allocator with %d outstanding allocations", a.outstanding.Count())
	}

	return a.engine.Destroy()
}

func (a *Allocator) entryFor(mem Memory) (*memoryEntry, error) {
	entry, ok := a.outstanding.Get(mem)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMemory, "memory handle %d", mem)
	}

	return entry, nil
}
