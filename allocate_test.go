package vkmem

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/vam"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/mocks"
)

func TestAllocateHostVisibleRequestsCoherentMemory(t *testing.T) {
	ctrl := gomock.NewController(t)

	engine := &fakeEngine{
		reservations: []*fakeMemory{newFakeMemory(128, true)},
	}
	allocator := testAllocator(engine)

	mem, res, err := allocator.AllocateMemoryForBuffer(mocks.NewMockBuffer(ctrl), true)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)

	require.Len(t, engine.requests, 1)
	require.Equal(t, vam.AllocationCreateInfo{
		Usage:         vam.MemoryUsageUnknown,
		RequiredFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
	}, engine.requests[0])

	hostVisible, err := allocator.IsHostVisible(mem)
	require.NoError(t, err)
	require.True(t, hostVisible)

	size, err := allocator.MemorySize(mem)
	require.NoError(t, err)
	require.Equal(t, 128, size)

	require.NoError(t, allocator.FreeMemory(mem))
	require.NoError(t, allocator.Destroy())
}

func TestAllocateDeviceLocalRequestsDeviceMemory(t *testing.T) {
	ctrl := gomock.NewController(t)

	engine := &fakeEngine{
		reservations: []*fakeMemory{newFakeMemory(256, false)},
	}
	allocator := testAllocator(engine)

	mem, _, err := allocator.AllocateMemoryForBuffer(mocks.NewMockBuffer(ctrl), false)
	require.NoError(t, err)

	require.Len(t, engine.requests, 1)
	require.Equal(t, vam.AllocationCreateInfo{
		Usage:         vam.MemoryUsageUnknown,
		RequiredFlags: core1_0.MemoryPropertyDeviceLocal,
	}, engine.requests[0])

	hostVisible, err := allocator.IsHostVisible(mem)
	require.NoError(t, err)
	require.False(t, hostVisible)

	require.NoError(t, allocator.FreeMemory(mem))
	require.NoError(t, allocator.Destroy())
}

func TestAllocateReservationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	engine := &fakeEngine{
		allocResult: core1_0.VKErrorOutOfDeviceMemory,
		allocErr:    core1_0.VKErrorOutOfDeviceMemory.ToError(),
	}
	allocator := testAllocator(engine)

	_, res, err := allocator.AllocateMemoryForBuffer(mocks.NewMockBuffer(ctrl), true)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorOutOfDeviceMemory, res)

	var allocErr *AllocationError
	require.True(t, errors.As(err, &allocErr))
	require.Equal(t, core1_0.VKErrorOutOfDeviceMemory, allocErr.Result)

	// Nothing was reserved, so the allocator tears down cleanly
	require.NoError(t, allocator.Destroy())
}

func TestAllocateBindFailureReleasesReservation(t *testing.T) {
	ctrl := gomock.NewController(t)

	reservation := newFakeMemory(512, false)
	reservation.bindResult = core1_0.VKErrorUnknown
	reservation.bindErr = core1_0.VKErrorUnknown.ToError()

	engine := &fakeEngine{
		reservations: []*fakeMemory{reservation},
	}
	allocator := testAllocator(engine)

	_, res, err := allocator.AllocateMemoryForBuffer(mocks.NewMockBuffer(ctrl), false)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorUnknown, res)

	var bindErr *BindError
	require.True(t, errors.As(err, &bindErr))

	require.True(t, reservation.freed)
	require.NoError(t, allocator.Destroy())
}

func TestAllocateFreeAllocateReusesAllocator(t *testing.T) {
	ctrl := gomock.NewController(t)

	engine := &fakeEngine{
		reservations: []*fakeMemory{
			newFakeMemory(64, true),
			newFakeMemory(64, true),
		},
	}
	allocator := testAllocator(engine)
	buffer := mocks.NewMockBuffer(ctrl)

	first, _, err := allocator.AllocateMemoryForBuffer(buffer, true)
	require.NoError(t, err)
	require.NoError(t, allocator.FreeMemory(first))

	second, _, err := allocator.AllocateMemoryForBuffer(buffer, true)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = allocator.MemorySize(first)
	require.ErrorIs(t, err, ErrUnknownMemory)

	require.NoError(t, allocator.FreeMemory(second))
	require.NoError(t, allocator.Destroy())
}

func TestFreeTwiceReturnsError(t *testing.T) {
	ctrl := gomock.NewController(t)

	engine := &fakeEngine{
		reservations: []*fakeMemory{newFakeMemory(32, false)},
	}
	allocator := testAllocator(engine)

	mem, _, err := allocator.AllocateMemoryForBuffer(mocks.NewMockBuffer(ctrl), false)
	require.NoError(t, err)

	require.NoError(t, allocator.FreeMemory(mem))

	err = allocator.FreeMemory(mem)
	require.ErrorIs(t, err, ErrUnknownMemory)

	require.NoError(t, allocator.Destroy())
}
