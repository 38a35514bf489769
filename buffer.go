package vkmem

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// CreateBuffer creates a buffer, reserves memory for it in the requested
// residency class, and binds the two together, returning both the buffer
// and the allocation handle. On any failure the partially-created buffer
// and any reserved memory are cleaned up before the error is returned.
//
// The returned pair should be released together with DestroyBuffer.
func (a *Allocator) CreateBuffer(bufferInfo core1_0.BufferCreateInfo, hostVisible bool) (core1_0.Buffer, Memory, common.VkResult, error) {
	a.logger.Debug("Allocator::CreateBuffer", slog.Int("Size", bufferInfo.Size), slog.Bool("HostVisible", hostVisible))

	buffer, res, err := a.device.CreateBuffer(a.allocationCallbacks, bufferInfo)
	if err != nil {
		return nil, 0, res, err
	}

	mem, res, err := a.AllocateMemoryForBuffer(buffer, hostVisible)
	if err != nil {
		buffer.Destroy(a.allocationCallbacks)
		return nil, 0, res, err
	}

	return buffer, mem, res, nil
}

// DestroyBuffer destroys a buffer created with CreateBuffer and frees the
// allocation backing it. The buffer is destroyed before its memory is
// released.
func (a *Allocator) DestroyBuffer(buffer core1_0.Buffer, mem Memory) error {
	a.logger.Debug("Allocator::DestroyBuffer")

	if buffer != nil {
		buffer.Destroy(a.allocationCallbacks)
	}

	return a.FreeMemory(mem)
}
