// Package msgs defines the L1 messages of the navigation controller.
package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/geo"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

// Waypoint is a position on the wire.
type Waypoint struct {
	Lat float64 `protobuf:"fixed64,1,opt,name=lat,proto3" json:"lat"`
	Lon float64 `protobuf:"fixed64,2,opt,name=lon,proto3" json:"lon"`
}

// NewWaypoint converts a geo.Point.
func NewWaypoint(p geo.Point) *Waypoint {
	return &Waypoint{Lat: p.Lat, Lon: p.Lon}
}

// Point converts to geo.Point.
func (m *Waypoint) Point() geo.Point {
	if m == nil {
		return geo.Point{}
	}
	return geo.P(m.Lat, m.Lon)
}

// ProtoMessage implements proto.Message.
func (m *Waypoint) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Waypoint) Reset() { *m = Waypoint{} }

// String implements proto.Message.
func (m *Waypoint) String() string { return proto.CompactTextString(m) }

// NavGoto navigates to a destination along the route from the routing
// service.
type NavGoto struct {
	Lat float64 `protobuf:"fixed64,1,opt,name=lat,proto3" json:"lat"`
	Lon float64 `protobuf:"fixed64,2,opt,name=lon,proto3" json:"lon"`
}

// Destination gets the destination.
func (m *NavGoto) Destination() geo.Point { return geo.P(m.Lat, m.Lon) }

// NewMessage implements Message.
func (m *NavGoto) NewMessage() fx.Message { return &NavGoto{} }

// TypeID implements SerializableMessage.
func (m *NavGoto) TypeID() uint32 { return NavGotoTypeID }

// Serializable implements SerializableMessage.
func (m *NavGoto) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *NavGoto) ProtoMessage() {}

// Reset implements proto.Message.
func (m *NavGoto) Reset() { *m = NavGoto{} }

// String implements proto.Message.
func (m *NavGoto) String() string { return proto.CompactTextString(m) }

// NavFollow navigates through the waypoints.
type NavFollow struct {
	Waypoints []*Waypoint `protobuf:"bytes,1,rep,name=waypoints,proto3" json:"waypoints,omitempty"`
}

// NewNavFollow creates NavFollow from a route.
func NewNavFollow(route geo.Route) *NavFollow {
	m := &NavFollow{Waypoints: make([]*Waypoint, 0, len(route))}
	for _, p := range route {
		m.Waypoints = append(m.Waypoints, NewWaypoint(p))
	}
	return m
}

// Route converts the waypoints.
func (m *NavFollow) Route() geo.Route {
	route := make(geo.Route, 0, len(m.Waypoints))
	for _, wp := range m.Waypoints {
		route = append(route, wp.Point())
	}
	return route
}

// NewMessage implements Message.
func (m *NavFollow) NewMessage() fx.Message { return &NavFollow{} }

// TypeID implements SerializableMessage.
func (m *NavFollow) TypeID() uint32 { return NavFollowTypeID }

// Serializable implements SerializableMessage.
func (m *NavFollow) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *NavFollow) ProtoMessage() {}

// Reset implements proto.Message.
func (m *NavFollow) Reset() { *m = NavFollow{} }

// String implements proto.Message.
func (m *NavFollow) String() string { return proto.CompactTextString(m) }

// NavStop cancels current navigation and stops the motors.
type NavStop struct {
}

// NewMessage implements Message.
func (m *NavStop) NewMessage() fx.Message { return &NavStop{} }

// TypeID implements SerializableMessage.
func (m *NavStop) TypeID() uint32 { return NavStopTypeID }

// Serializable implements SerializableMessage.
func (m *NavStop) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *NavStop) ProtoMessage() {}

// Reset implements proto.Message.
func (m *NavStop) Reset() { *m = NavStop{} }

// String implements proto.Message.
func (m *NavStop) String() string { return proto.CompactTextString(m) }

// NavManual drives the motors directly for a short duration.
// Rejected while navigating.
type NavManual struct {
	Motion string `protobuf:"bytes,1,opt,name=motion,proto3" json:"motion,omitempty"`
	// Speed is in [0, 1], 0 for default.
	Speed float32 `protobuf:"fixed32,2,opt,name=speed,proto3" json:"speed,omitempty"`
	// DurationMs is 0 for default duration of the motion.
	DurationMs uint32 `protobuf:"varint,3,opt,name=duration_ms,proto3" json:"duration_ms,omitempty"`
}

// NewMessage implements Message.
func (m *NavManual) NewMessage() fx.Message { return &NavManual{} }

// TypeID implements SerializableMessage.
func (m *NavManual) TypeID() uint32 { return NavManualTypeID }

// Serializable implements SerializableMessage.
func (m *NavManual) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *NavManual) ProtoMessage() {}

// Reset implements proto.Message.
func (m *NavManual) Reset() { *m = NavManual{} }

// String implements proto.Message.
func (m *NavManual) String() string { return proto.CompactTextString(m) }

// NavStatusQuery queries the status.
type NavStatusQuery struct {
}

// NewMessage implements Message.
func (m *NavStatusQuery) NewMessage() fx.Message { return &NavStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *NavStatusQuery) TypeID() uint32 { return NavStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *NavStatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *NavStatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *NavStatusQuery) Reset() { *m = NavStatusQuery{} }

// String implements proto.Message.
func (m *NavStatusQuery) String() string { return proto.CompactTextString(m) }

// NavStatusReply is the response for NavStatusQuery.
type NavStatusReply struct {
	Status *NavStatus `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *NavStatusReply) NewMessage() fx.Message { return &NavStatusReply{} }

// TypeID implements SerializableMessage.
func (m *NavStatusReply) TypeID() uint32 { return NavStatusReplyTypeID }

// Serializable implements SerializableMessage.
func (m *NavStatusReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *NavStatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *NavStatusReply) Reset() { *m = NavStatusReply{} }

// String implements proto.Message.
func (m *NavStatusReply) String() string { return proto.CompactTextString(m) }

// NavStatus is an Event message reflecting the navigation state.
type NavStatus struct {
	Phase        string    `protobuf:"bytes,1,opt,name=phase,proto3" json:"phase,omitempty"`
	Index        uint32    `protobuf:"varint,2,opt,name=index,proto3" json:"index,omitempty"`
	Waypoints    uint32    `protobuf:"varint,3,opt,name=waypoints,proto3" json:"waypoints,omitempty"`
	Target       *Waypoint `protobuf:"bytes,4,opt,name=target,proto3" json:"target,omitempty"`
	Position     *Waypoint `protobuf:"bytes,5,opt,name=position,proto3" json:"position,omitempty"`
	Distance     float64   `protobuf:"fixed64,6,opt,name=distance,proto3" json:"distance,omitempty"`
	BearingError float64   `protobuf:"fixed64,7,opt,name=bearing_error,proto3" json:"bearing_error,omitempty"`
	Left         float32   `protobuf:"fixed32,8,opt,name=left,proto3" json:"left,omitempty"`
	Right        float32   `protobuf:"fixed32,9,opt,name=right,proto3" json:"right,omitempty"`
	LeftForward  bool      `protobuf:"varint,10,opt,name=left_forward,proto3" json:"left_forward,omitempty"`
	RightForward bool      `protobuf:"varint,11,opt,name=right_forward,proto3" json:"right_forward,omitempty"`
	Running      bool      `protobuf:"varint,12,opt,name=running,proto3" json:"running,omitempty"`
	Error        string    `protobuf:"bytes,13,opt,name=error,proto3" json:"error,omitempty"`
}

// NewMessage implements Message.
func (m *NavStatus) NewMessage() fx.Message { return &NavStatus{} }

// TypeID implements SerializableMessage.
func (m *NavStatus) TypeID() uint32 { return NavStatusEventTypeID }

// Serializable implements SerializableMessage.
func (m *NavStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *NavStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *NavStatus) Reset() { *m = NavStatus{} }

// String implements proto.Message.
func (m *NavStatus) String() string { return proto.CompactTextString(m) }

// GroupNav defines the custom group.
const GroupNav = msgs.GroupCustom

// TypeIDs
const (
	NavStatusEventTypeID uint32 = GroupNav | msgs.TypeIDKindEvent | 0x0000
	NavStatusQueryTypeID uint32 = GroupNav | 0x0000
	NavStatusReplyTypeID uint32 = GroupNav | msgs.TypeIDMaskReply | 0x0000
	NavGotoTypeID        uint32 = GroupNav | 0x0001
	NavFollowTypeID      uint32 = GroupNav | 0x0002
	NavStopTypeID        uint32 = GroupNav | 0x0003
	NavManualTypeID      uint32 = GroupNav | 0x0004
)

func init() {
	msgs.MessageTypes[NavStatusEventTypeID] = (*NavStatus)(nil)
	msgs.MessageTypes[NavStatusQueryTypeID] = (*NavStatusQuery)(nil)
	msgs.MessageTypes[NavStatusReplyTypeID] = (*NavStatusReply)(nil)
	msgs.MessageTypes[NavGotoTypeID] = (*NavGoto)(nil)
	msgs.MessageTypes[NavFollowTypeID] = (*NavFollow)(nil)
	msgs.MessageTypes[NavStopTypeID] = (*NavStop)(nil)
	msgs.MessageTypes[NavManualTypeID] = (*NavManual)(nil)
}
