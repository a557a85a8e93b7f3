package entity

import "time"

// CloudInformation is a periodic health sample of a controller node.
type CloudInformation struct {
	// Started is the node start time in epoch milliseconds.
	Started int64
	// Runtime is the node uptime in milliseconds.
	Runtime int64
	// JavaVersion is the runtime version string reported by the node.
	JavaVersion      string
	CPUUsage         float64
	UsedMemory       float64
	MaxMemory        float64
	SubscribedEvents int32
	// Timestamp is the sample time in epoch milliseconds.
	Timestamp int64
}

// AggregateCloudInformation averages health samples over a window.
type AggregateCloudInformation struct {
	Timestamp int64
	AvgCPU    float64
	AvgRAM    float64
}

// Aggregate averages samples. The timestamp is that of the newest sample.
// An empty input yields the zero value stamped with the current time.
func Aggregate(samples []CloudInformation) AggregateCloudInformation {
	if len(samples) == 0 {
		return AggregateCloudInformation{Timestamp: time.Now().UnixMilli()}
	}
	var out AggregateCloudInformation
	for _, s := range samples {
		out.AvgCPU += s.CPUUsage
		out.AvgRAM += s.UsedMemory
		out.Timestamp = max(out.Timestamp, s.Timestamp)
	}
	n := float64(len(samples))
	out.AvgCPU /= n
	out.AvgRAM /= n
	return out
}
