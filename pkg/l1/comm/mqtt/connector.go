package mqtt

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/comm"
)

// DefaultDiscoverTimeout is how long Discover collects retained meta
// messages.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Connector finds and connects rovers registered on a broker.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
}

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{DiscoverTimeout: DefaultDiscoverTimeout, options: opts, topicPrefix: prefix}, nil
}

// ParseMetaTopic extracts the ref from "<type>/<id>/meta".
func ParseMetaTopic(topic string) (l1.ControllerRef, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[2] != "meta" {
		return l1.ControllerRef{}, false
	}
	ref := l1.ControllerRef{Type: parts[0], ID: parts[1]}
	return ref, ref.IsValid()
}

// Discover implements l1.Connector. Controllers are sorted by name.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	var lock sync.Mutex
	found := make(map[l1.ControllerRef]l1.ControllerInfo)
	q := NewQueue(c.options, c.topicPrefix)
	defer q.Close()
	q.Sub(MetaTopic(l1.ControllerRef{Type: "+", ID: "+"}), func(topic string, payload []byte) {
		ref, ok := ParseMetaTopic(topic)
		if !ok || len(payload) == 0 {
			return
		}
		info := l1.ControllerInfo{Ref: ref}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.V(2).Infof("bad meta of %s: %v", ref.Name(), err)
		}
		lock.Lock()
		found[ref] = info
		lock.Unlock()
	})
	if err := wait(ctx, q.Connect()); err != nil {
		return nil, err
	}

	dur := c.DiscoverTimeout
	if dur <= 0 {
		dur = DefaultDiscoverTimeout
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	lock.Lock()
	defer lock.Unlock()
	res := make([]l1.ControllerInfo, 0, len(found))
	for _, info := range found {
		res = append(res, info)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Ref.Name() < res[j].Ref.Name() })
	return res, nil
}

// Connect implements l1.Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conn := &ControllerConn{Queue: NewQueue(c.options, c.topicPrefix)}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	if err := wait(ctx, conn.Queue.Connect()); err != nil {
		conn.Queue.Close()
		return nil, err
	}
	return conn, nil
}

// ControllerConn is a client connection through the broker.
type ControllerConn struct {
	comm.ControllerConn
	Queue *Queue
}

// Close disconnects from the broker.
func (c *ControllerConn) Close() error {
	c.ControllerConn.Close()
	return c.Queue.Close()
}

// wait waits for token or ctx.
func wait(ctx context.Context, token paho.Token) error {
	for !token.WaitTimeout(100 * time.Millisecond) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return token.Error()
}
