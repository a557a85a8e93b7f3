package mapper

import (
	"github.com/polocloud/polocloud/pkg/document"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/wire"
)

// CloudInformationFromWire converts a health sample.
func CloudInformationFromWire(s wire.CloudInformationSnapshot) (entity.CloudInformation, error) {
	return entity.CloudInformation{
		Started:          s.Started,
		Runtime:          s.Runtime,
		JavaVersion:      s.JavaVersion,
		CPUUsage:         s.CPUUsage,
		UsedMemory:       s.UsedMemory,
		MaxMemory:        s.MaxMemory,
		SubscribedEvents: s.SubscribedEvents,
		Timestamp:        s.Timestamp,
	}, nil
}

// CloudInformationToWire converts a health sample.
func CloudInformationToWire(c entity.CloudInformation) wire.CloudInformationSnapshot {
	return wire.CloudInformationSnapshot{
		Started:          c.Started,
		Runtime:          c.Runtime,
		JavaVersion:      c.JavaVersion,
		CPUUsage:         c.CPUUsage,
		UsedMemory:       c.UsedMemory,
		MaxMemory:        c.MaxMemory,
		SubscribedEvents: c.SubscribedEvents,
		Timestamp:        c.Timestamp,
	}
}

// CloudInformationToDocument returns the document form of c.
func CloudInformationToDocument(c entity.CloudInformation) document.Document {
	return document.Document{
		document.KeyStarted:          c.Started,
		document.KeyRuntime:          c.Runtime,
		document.KeyJavaVersion:      c.JavaVersion,
		document.KeyCPUUsage:         c.CPUUsage,
		document.KeyUsedMemory:       c.UsedMemory,
		document.KeyMaxMemory:        c.MaxMemory,
		document.KeySubscribedEvents: c.SubscribedEvents,
		document.KeyTimestamp:        c.Timestamp,
	}
}

// CloudInformationFromDocument reads a health sample.
func CloudInformationFromDocument(d document.Document) (entity.CloudInformation, error) {
	r := document.Read(string(wire.KindCloudInformation), d)
	c := entity.CloudInformation{
		Started:          r.OptInt64(document.KeyStarted, 0),
		Runtime:          r.OptInt64(document.KeyRuntime, 0),
		JavaVersion:      r.OptString(document.KeyJavaVersion, ""),
		CPUUsage:         r.OptFloat64(document.KeyCPUUsage, 0),
		UsedMemory:       r.OptFloat64(document.KeyUsedMemory, 0),
		MaxMemory:        r.OptFloat64(document.KeyMaxMemory, 0),
		SubscribedEvents: r.OptInt32(document.KeySubscribedEvents, 0),
		Timestamp:        r.Int64(document.KeyTimestamp),
	}
	return c, r.Err()
}

// AggregateCloudInformationFromWire converts an averaged sample.
func AggregateCloudInformationFromWire(s wire.AggregateCloudInformationSnapshot) (entity.AggregateCloudInformation, error) {
	return entity.AggregateCloudInformation{Timestamp: s.Timestamp, AvgCPU: s.AvgCPU, AvgRAM: s.AvgRAM}, nil
}

// AggregateCloudInformationToWire converts an averaged sample.
func AggregateCloudInformationToWire(a entity.AggregateCloudInformation) wire.AggregateCloudInformationSnapshot {
	return wire.AggregateCloudInformationSnapshot{Timestamp: a.Timestamp, AvgCPU: a.AvgCPU, AvgRAM: a.AvgRAM}
}

// AggregateCloudInformationToDocument returns the document form of a.
func AggregateCloudInformationToDocument(a entity.AggregateCloudInformation) document.Document {
	return document.Document{
		document.KeyTimestamp: a.Timestamp,
		document.KeyAvgCPU:    a.AvgCPU,
		document.KeyAvgRAM:    a.AvgRAM,
	}
}

// AggregateCloudInformationFromDocument reads an averaged sample.
func AggregateCloudInformationFromDocument(d document.Document) (entity.AggregateCloudInformation, error) {
	r := document.Read(string(wire.KindAggregateCloudInformation), d)
	a := entity.AggregateCloudInformation{
		Timestamp: r.Int64(document.KeyTimestamp),
		AvgCPU:    r.OptFloat64(document.KeyAvgCPU, 0),
		AvgRAM:    r.OptFloat64(document.KeyAvgRAM, 0),
	}
	return a, r.Err()
}
