package decode

import "runtime"

const (
	minWorkers = 2
	maxWorkers = 4
)

// PoolSize picks the worker count for one input file. A positive override is
// used as given; otherwise the CPU count is clamped to [2, min(cpus, 4)]. The
// result never exceeds the channel count.
func PoolSize(override, cpus, channelCount int) int {
	if cpus <= 0 {
		cpus = runtime.NumCPU()
	}
	size := override
	if size < 1 {
		upper := max(minWorkers, min(cpus, maxWorkers))
		size = min(max(cpus, minWorkers), upper)
	}
	if channelCount > 0 && size > channelCount {
		size = channelCount
	}
	return max(size, 1)
}
