package observability

import (
	"runtime"
	"sync/atomic"
)

// Stats is a point-in-time snapshot of the coordinator counters,
// logged periodically by the heartbeat worker.
type Stats struct {
	ConnectionsOpen   int64  `json:"connections_open"`
	Logins            uint64 `json:"logins"`
	MessagesPersisted uint64 `json:"messages_persisted"`
	MessagesDelivered uint64 `json:"messages_delivered"`
	Broadcasts        uint64 `json:"broadcasts"`
	DroppedFrames     uint64 `json:"dropped_frames"`
	StoreErrors       uint64 `json:"store_errors"`
	AllocMemMb        uint64 `json:"alloc_mem_mb"`
	NumGC             uint32 `json:"num_gc"`
}

// Monitor aggregates real-time telemetry. All counters are atomic so
// every component can increment without coordination.
type Monitor struct {
	connectionsOpen   atomic.Int64
	logins            atomic.Uint64
	messagesPersisted atomic.Uint64
	messagesDelivered atomic.Uint64
	broadcasts        atomic.Uint64
	droppedFrames     atomic.Uint64
	storeErrors       atomic.Uint64
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) ConnOpened()            { m.connectionsOpen.Add(1) }
func (m *Monitor) ConnClosed()            { m.connectionsOpen.Add(-1) }
func (m *Monitor) IncrLogins()            { m.logins.Add(1) }
func (m *Monitor) IncrMessagesPersisted() { m.messagesPersisted.Add(1) }
func (m *Monitor) IncrMessagesDelivered() { m.messagesDelivered.Add(1) }
func (m *Monitor) IncrBroadcasts()        { m.broadcasts.Add(1) }
func (m *Monitor) IncrDroppedFrames()     { m.droppedFrames.Add(1) }
func (m *Monitor) IncrStoreErrors()       { m.storeErrors.Add(1) }

func (m *Monitor) Snapshot() Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Stats{
		ConnectionsOpen:   m.connectionsOpen.Load(),
		Logins:            m.logins.Load(),
		MessagesPersisted: m.messagesPersisted.Load(),
		MessagesDelivered: m.messagesDelivered.Load(),
		Broadcasts:        m.broadcasts.Load(),
		DroppedFrames:     m.droppedFrames.Load(),
		StoreErrors:       m.storeErrors.Load(),
		AllocMemMb:        mem.Alloc / 1024 / 1024,
		NumGC:             mem.NumGC,
	}
}
