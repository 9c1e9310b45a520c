package drive

import (
	"sync"

	"github.com/golang/glog"
)

// Call is a recorded actuator call.
type Call struct {
	Stop    bool
	Command Command
}

// Recorder is an Actuator remembering all calls.
type Recorder struct {
	// DriveErr, if set, is returned by Drive.
	DriveErr error
	// StopErr, if set, is returned by Stop.
	StopErr error

	lock  sync.Mutex
	calls []Call
}

// Drive implements Actuator.
func (r *Recorder) Drive(cmd Command) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.calls = append(r.calls, Call{Command: cmd})
	return r.DriveErr
}

// Stop implements Actuator.
func (r *Recorder) Stop() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.calls = append(r.calls, Call{Stop: true})
	return r.StopErr
}

// Calls gets a copy of all calls in order.
func (r *Recorder) Calls() []Call {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Call(nil), r.calls...)
}

// Drives gets all drive commands.
func (r *Recorder) Drives() (cmds []Command) {
	for _, c := range r.Calls() {
		if !c.Stop {
			cmds = append(cmds, c.Command)
		}
	}
	return
}

// Stops counts Stop calls.
func (r *Recorder) Stops() (n int) {
	for _, c := range r.Calls() {
		if c.Stop {
			n++
		}
	}
	return
}

// Logger is an Actuator only logging commands, used for dry runs.
type Logger struct{}

// Drive implements Actuator.
func (Logger) Drive(cmd Command) error {
	glog.Infof("DRIVE %s", cmd)
	return nil
}

// Stop implements Actuator.
func (Logger) Stop() error {
	glog.Info("STOP")
	return nil
}
