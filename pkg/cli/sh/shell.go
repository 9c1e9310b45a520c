// Package sh is the interactive shell talking to rover controllers.
// Command packages register their commands with AddCmds in init.
package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	env "github.com/robotalks/rover.go/pkg/l1/env/connector"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

// ErrNotConnected is reported by commands requiring a connection.
var ErrNotConnected = errors.New("not connected")

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive    bool
	OutputJSON     bool
	AutoConnect    bool
	CommandTimeout time.Duration
	// ShowEvents prints events received from the connected controller.
	ShowEvents bool

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *Conn
}

// Conn is a controller connection with its running loop.
type Conn struct {
	Ref    l1.ControllerRef
	Conn   l1.ControllerConn
	Loop   *fx.Loop
	cancel context.CancelFunc
}

// Close stops the loop and closes the connection.
func (c *Conn) Close() {
	c.cancel()
	if closer, ok := c.Conn.(interface{ Close() error }); ok {
		closer.Close()
	}
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "rover > "
)

var (
	evalOnly       bool
	outputJSON     bool
	showEvents     bool
	commandTimeout = 2 * time.Second

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluate the command line only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.BoolVar(&showEvents, "events", showEvents, "Print events from the connected controller.")
	flag.DurationVar(&commandTimeout, "timeout", commandTimeout, "Command reply timeout.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive:    !evalOnly,
		OutputJSON:     outputJSON,
		CommandTimeout: commandTimeout,
		ShowEvents:     showEvents,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// FormatInfo prints ControllerInfo into friendly string for display.
func FormatInfo(info l1.ControllerInfo) string {
	if info.Meta.Description != "" {
		return info.Ref.Name() + ": " + info.Meta.Description
	}
	return info.Ref.Name()
}

// FormatMsg formats a message as its type name followed by fields,
// or JSON of the fields.
func FormatMsg(msg fx.Message, asJSON bool) (string, error) {
	s, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return fmt.Sprintf("%#v", msg), nil
	}
	if asJSON {
		out, err := json.Marshal(s.Serializable())
		return string(out), err
	}
	name := reflect.Indirect(reflect.ValueOf(msg)).Type().Name()
	return strings.TrimSpace(name + " " + s.Serializable().String()), nil
}

// DoCommand runs a command and waits for result.
func DoCommand(c *ishell.Context, msg fx.Message) error {
	s := ShellFrom(c)
	res, err := s.Do(msg)
	if err != nil {
		c.Err(err)
		return err
	}
	if _, ok := res.(*msgs.CommandOK); ok && !s.OutputJSON {
		c.Println("OK")
		return nil
	}
	out, err := FormatMsg(res, s.OutputJSON)
	if err != nil {
		c.Err(err)
		return err
	}
	c.Println(out)
	return nil
}

// Do sends a command over current connection and waits for the reply.
func (s *Shell) Do(msg fx.Message) (fx.Message, error) {
	if s.Conn == nil {
		return nil, ErrNotConnected
	}
	timeout := s.CommandTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	reply, err := l1.Await(ctx, s.Conn.Conn.DoCommand(msg))
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("command timeout: %w", err)
	}
	return reply, err
}

// printEvents consumes events not taken by other controllers.
func (s *Shell) printEvents(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		msg := mctx.CurrentMessage()
		if _, ok := msg.(msgs.SerializableMessage); !ok {
			return
		}
		mctx.MessageTaken()
		if !s.ShowEvents {
			return
		}
		out, err := FormatMsg(msg, s.OutputJSON)
		if err != nil {
			glog.Warningf("format event: %v", err)
			return
		}
		s.Shell.Println(out)
	}))
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverControllers discovers controllers.
func (s *Shell) DiscoverControllers(filter func(l1.ControllerInfo) bool) ([]l1.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.CommandTimeout+time.Second)
	defer cancel()
	infoList, err := connector.Discover(ctx)
	if err != nil || filter == nil {
		return infoList, err
	}
	items := make([]l1.ControllerInfo, 0, len(infoList))
	for _, info := range infoList {
		if filter(info) {
			items = append(items, info)
		}
	}
	return items, nil
}

// SelectController discovers controllers and asks for a choice.
func (s *Shell) SelectController(filter func(l1.ControllerInfo) bool) (*l1.ControllerInfo, error) {
	infoList, err := s.DiscoverControllers(filter)
	if err != nil || len(infoList) == 0 {
		return nil, err
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("%d controllers discovered in non-interactive mode", len(infoList))
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
		if index < 0 {
			return nil, nil
		}
	}
	return &infoList[index], nil
}

// Connect connects controller with ref.
func (s *Shell) Connect(ref l1.ControllerRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		cancel()
		return err
	}
	c := &Conn{Ref: ref, Conn: conn, Loop: fx.NewLoop(), cancel: cancel}
	if adder, ok := conn.(fx.LoopAdder); ok {
		c.Loop.Add(adder)
	}
	c.Loop.AddController(fx.PrLvIdle, fx.ControlFunc(s.printEvents))
	s.Disconnect()
	s.Conn = c
	go c.Loop.Run(ctx)
	s.Shell.SetPrompt(ref.Name() + " > ")
	glog.V(1).Infof("connected %s", ref.Name())
	return nil
}

// Disconnect disconnects current controller.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Ref.Name())
		}
		if err := s.Connect(s.Config.Ref); err != nil {
			glog.Exitf("connect %s: %v", s.Config.Ref.Name(), err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Exit("command expected")
}

func parseRefArgs(args []string) (ref l1.ControllerRef, typ string, err error) {
	switch len(args) {
	case 0:
		return
	case 1:
		if strings.Contains(args[0], "/") {
			ref, err = l1.ParseControllerRef(args[0])
			return
		}
		return ref, args[0], nil
	default:
		ref = l1.ControllerRef{Type: args[0], ID: args[1]}
		return
	}
}

var (
	// DiscoverCmd discovers controllers.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "list registered controllers",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverControllers(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if infoList == nil {
					infoList = []l1.ControllerInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No controllers found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a controller.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE [ID] | TYPE/ID]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ref, typ, err := parseRefArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if !ref.IsValid() {
				var filter func(l1.ControllerInfo) bool
				if typ != "" {
					filter = func(info l1.ControllerInfo) bool { return info.Ref.Type == typ }
				}
				info, err := s.SelectController(filter)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(errors.New("no controller discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current controller.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "close current connection",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
