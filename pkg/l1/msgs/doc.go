// Package msgs defines the L1 envelope and the messages shared by all
// controllers.
//
// L1 is spoken between a controller (the rover) and its clients
// (navcli, dashboards, mission planners). A client sends commands and
// receives one reply per command. The controller publishes events,
// such as navigation status, without being asked. Every message is a
// protobuf payload tagged with a TypeID registered in this package or
// by the controller that owns it.
package msgs
