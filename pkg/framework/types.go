// Package framework runs the rover: a Loop dispatches messages to
// controllers by priority, and a Runner supervises the background
// goroutines (receivers, servers, the loop itself).
package framework

import "context"

// Named is implemented by things that report a name in logs.
type Named interface {
	Name() string
}

// Runnable is a background task that runs until ctx is done or it fails.
type Runnable interface {
	Run(context.Context) error
}

// Message is anything delivered into the loop.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller is invoked once per loop iteration at its priority level.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// ControlContext is passed to controllers during one iteration.
type ControlContext interface {
	// Context is canceled when the loop stops.
	Context() context.Context
	// Messages holds the messages collected for this iteration.
	// Messages not taken at one level are seen by lower levels.
	Messages() MessageStore

	LoopControl
}

// LoopControl is safe to use from any goroutine.
type LoopControl interface {
	// PostMessage queues msg for the next iteration.
	PostMessage(Message)
	// TriggerNext runs the next iteration without waiting for the tick.
	TriggerNext()
	// Deliver is PostMessage followed by TriggerNext.
	Deliver(Message)
}

// PriorityLevels is the number of priority levels. Level 0 runs first.
const PriorityLevels = 16

// Priority levels in use.
const (
	// PrLvControl is where commands are executed.
	PrLvControl = 8
	// PrLvIdle sees whatever no one else took.
	PrLvIdle = PriorityLevels - 1
	// PrLvPostProc runs after all controllers changed state.
	PrLvPostProc = PrLvIdle - 1
)

// MessageStore gives access to the messages of an iteration.
type MessageStore interface {
	ProcessMessages(MessageProcessor)
}

// MessageProcessor visits messages in arrival order.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext is the view of a single message.
type MessageProcessingContext interface {
	CurrentMessage() Message
	// MessageTaken removes the message from the store.
	MessageTaken()
}
