package vkmem

import (
	"unsafe"

	"github.com/vkngwrapper/arsenal/vam"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// memoryEngine is the slice of the underlying allocation engine consumed by
// this package. The production implementation delegates to vam.Allocator;
// this package never makes suballocation decisions of its own.
type memoryEngine interface {
	AllocateMemoryForBuffer(buffer core1_0.Buffer, o vam.AllocationCreateInfo) (boundMemory, common.VkResult, error)
	Destroy() error
}

// boundMemory is a single region of device memory reserved by the engine.
type boundMemory interface {
	BindBufferMemory(buffer core1_0.Buffer) (common.VkResult, error)
	Map() (unsafe.Pointer, common.VkResult, error)
	Unmap() error
	Free() error
	Size() int
	MemoryType() core1_0.MemoryType
}

type vamEngine struct {
	allocator *vam.Allocator
}

func (e *vamEngine) AllocateMemoryForBuffer(buffer core1_0.Buffer, o vam.AllocationCreateInfo) (boundMemory, common.VkResult, error) {
	alloc := &vam.Allocation{}
	res, err := e.allocator.AllocateMemoryForBuffer(buffer, o, alloc)
	if err != nil {
		return nil, res, err
	}

	return alloc, res, nil
}

func (e *vamEngine) Destroy() error {
	return e.allocator.Destroy()
}
