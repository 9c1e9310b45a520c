package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/l1/comm/mqtt"
	env "github.com/robotalks/rover.go/pkg/l1/env/controller"
	"github.com/robotalks/rover.go/pkg/l1/msgs"

	_ "github.com/robotalks/rover.go/pkg/navbot/msgs"
)

var (
	mqttURL  = env.DefaultMQTTBrokerURL
	topic    = "#"
	showMeta = true
)

func init() {
	if val := os.Getenv("ROVER_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&topic, "topic", topic, "Topic filter under the prefix.")
	flag.BoolVar(&showMeta, "meta", showMeta, "Print controller announcements.")
}

// describe decodes an MQTT message for display. ok is false when the
// message should be skipped.
func describe(topic string, payload []byte) (line string, ok bool) {
	if ref, isMeta := mqtt.ParseMetaTopic(topic); isMeta {
		if !showMeta {
			return "", false
		}
		if len(payload) == 0 {
			return ref.Name() + " gone", true
		}
		return ref.Name() + " announced: " + string(payload), true
	}
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		return fmt.Sprintf("%s: bad message: %v", topic, err), true
	}
	msg, err := typed.Decode()
	if err != nil {
		return fmt.Sprintf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err), true
	}
	kind := "cmd"
	switch {
	case typed.IsEvent():
		kind = "evt"
	case typed.IsReply():
		kind = "rpl"
	}
	return fmt.Sprintf("%s: %s#%d [%s] %s", topic, kind, typed.Sequence,
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		msg.(msgs.SerializableMessage).Serializable().String()), true
}

func main() {
	flag.Parse()
	defer glog.Flush()

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		glog.Exit(err)
	}
	q.Sub(topic, mqtt.Handler(func(topic string, payload []byte) {
		if line, ok := describe(topic, payload); ok {
			fmt.Println(time.Now().Format("15:04:05.000000"), line)
		}
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		glog.Exitf("connect %s: %v", mqttURL, token.Error())
	}
	defer q.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}
