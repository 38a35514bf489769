package vkmem

import (
	"strconv"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/arsenal/memutils"
)

// AllocationStatistics aggregates an Allocator's outstanding allocations,
// in total and broken down by residency class. Each outstanding allocation
// counts as one block, since the engine's suballocation structure is not
// visible through this package.
type AllocationStatistics struct {
	Total       memutils.DetailedStatistics
	HostVisible memutils.DetailedStatistics
	DeviceLocal memutils.DetailedStatistics
}

// CalculateStatistics walks the outstanding-allocation registry and returns
// aggregate numbers for it.
func (a *Allocator) CalculateStatistics() AllocationStatistics {
	a.logger.Debug("Allocator::CalculateStatistics")

	var stats AllocationStatistics
	stats.Total.Clear()
	stats.HostVisible.Clear()
	stats.DeviceLocal.Clear()

	a.outstanding.Iter(func(mem Memory, entry *memoryEntry) bool {
		class := &stats.DeviceLocal
		if entry.hostVisible {
			class = &stats.HostVisible
		}

		size := entry.mem.Size()
		class.Statistics.BlockCount++
		class.Statistics.BlockBytes += size
		class.AddAllocation(size)
		return false
	})

	stats.Total.AddDetailedStatistics(&stats.HostVisible)
	stats.Total.AddDetailedStatistics(&stats.DeviceLocal)

	return stats
}

// BuildStatsString returns a JSON description of the Allocator's
// outstanding allocations, suitable for logging or diagnostics dumps.
func (a *Allocator) BuildStatsString() string {
	writer := jwriter.NewWriter()

	objState := writer.Object()

	stats := a.CalculateStatistics()
	totalObj := objState.Name("Total").Object()
	writeDetailedStatistics(&totalObj, &stats.Total)
	totalObj.End()

	hostObj := objState.Name("HostVisible").Object()
	writeDetailedStatistics(&hostObj, &stats.HostVisible)
	hostObj.End()

	deviceObj := objState.Name("DeviceLocal").Object()
	writeDetailedStatistics(&deviceObj, &stats.DeviceLocal)
	deviceObj.End()

	allocObj := objState.Name("Allocations").Object()
	a.outstanding.Iter(func(mem Memory, entry *memoryEntry) bool {
		handleObj := allocObj.Name(strconv.FormatUint(uint64(mem), 10)).Object()
		handleObj.Name("Size").Int(entry.mem.Size())
		handleObj.Name("HostVisible").Bool(entry.hostVisible)
		handleObj.End()
		return false
	})
	allocObj.End()

	objState.End()

	return string(writer.Bytes())
}

func writeDetailedStatistics(json *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	json.Name("BlockCount").Int(stats.BlockCount)
	json.Name("BlockBytes").Int(stats.BlockBytes)
	json.Name("AllocationCount").Int(stats.AllocationCount)
	json.Name("AllocationBytes").Int(stats.AllocationBytes)

	if stats.AllocationCount > 1 {
		json.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}
}
