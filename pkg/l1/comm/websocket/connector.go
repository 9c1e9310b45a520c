package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/websocket"

	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/comm"
)

// Paths served by the controller.
const (
	PathL1   = "/l1"
	PathInfo = "/info"
)

// Connector implements l1.Connector by dialing a controller serving
// a Hub. The controller behind the URL is the only one discovered.
type Connector struct {
	URL    *url.URL
	Origin string
	Client *http.Client
}

// NewConnector creates a Connector from ws://host:port or wss://host:port.
func NewConnector(serverURL string) (*Connector, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported websocket scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return &Connector{URL: u, Origin: "http://localhost/", Client: http.DefaultClient}, nil
}

func (c *Connector) endpoint(scheme, path string) string {
	u := *c.URL
	if scheme != "" {
		u.Scheme = scheme
	}
	u.Path += path
	return u.String()
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	scheme := "http"
	if c.URL.Scheme == "wss" {
		scheme = "https"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(scheme, PathInfo), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discover: %s", resp.Status)
	}
	var info l1.ControllerInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	return []l1.ControllerInfo{info}, nil
}

// Connect implements Connector. ref is not checked as the URL
// identifies the controller.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conf, err := websocket.NewConfig(c.endpoint("", PathL1), c.Origin)
	if err != nil {
		return nil, err
	}
	ws, err := conf.DialContext(ctx)
	if err != nil {
		return nil, err
	}
	ws.PayloadType = websocket.BinaryFrame
	conn := &ControllerConn{Conn: ws}
	conn.Init(New(ws))
	return conn, nil
}

// ControllerConn implements ControllerConn over websocket.
type ControllerConn struct {
	comm.ControllerConn
	Conn *websocket.Conn
}
