package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/robotalks/rover.go/pkg/drive"
	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/gps"
	"github.com/robotalks/rover.go/pkg/heading"
	"github.com/robotalks/rover.go/pkg/l1"
	env "github.com/robotalks/rover.go/pkg/l1/env/controller"
	"github.com/robotalks/rover.go/pkg/nav"
	"github.com/robotalks/rover.go/pkg/navbot"
	"github.com/robotalks/rover.go/pkg/route"
	"github.com/robotalks/rover.go/pkg/sim"
)

var (
	dryRun    bool
	simulate  bool
	navConfig string
)

func init() {
	env.SetControllerType("rover", l1.ControllerMeta{Description: "GPS waypoint rover"})
	env.SetupFlags()
	gps.SetupFlags()
	heading.SetupFlags()
	route.SetupFlags()
	drive.SetupFlags()
	nav.SetupFlags()
	navbot.SetupFlags()
	sim.SetupFlags()
	flag.BoolVar(&simulate, "sim", simulate, "Drive a simulated rover instead of GPS and motors.")
	flag.BoolVar(&dryRun, "dry-run", dryRun, "Log drive commands instead of driving motors.")
	flag.StringVar(&navConfig, "nav-config", navConfig, "Navigation config file (yaml, json or toml).")
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		glog.Exit(err)
	}
	glog.Flush()
}

func run() error {
	if navConfig != "" {
		if err := nav.LoadConfigFile(navConfig); err != nil {
			return fmt.Errorf("nav config: %w", err)
		}
	}
	if dryRun {
		drive.Default().Kind = drive.KindLog
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	l1env, err := env.NewConfig().NewEnv()
	if err != nil {
		return fmt.Errorf("L1 env: %w", err)
	}

	var (
		src     gps.FixSource
		act     drive.Actuator
		compass heading.Source
	)
	if simulate {
		v, err := sim.NewConfig().NewVehicle()
		if err != nil {
			return err
		}
		glog.Infof("simulating rover at %s", v.Origin)
		src, act = v, v
		if heading.Default().Kind == heading.KindConstant {
			compass = v
		}
	} else {
		receiver, err := gps.NewConfig().NewReceiver()
		if err != nil {
			return fmt.Errorf("gps: %w", err)
		}
		defer receiver.Close()
		receiver.Metrics = gps.NewMetrics(reg)
		if act, err = drive.NewConfig().NewActuator(); err != nil {
			return fmt.Errorf("drive: %w", err)
		}
		if closer, ok := act.(io.Closer); ok {
			defer closer.Close()
		}
		src = receiver
	}
	tracker := gps.NewTracker(src)

	hdg, fixes, err := heading.NewConfig().NewSource(tracker)
	if err != nil {
		return fmt.Errorf("heading: %w", err)
	}
	if compass != nil {
		hdg = compass
	}
	routes, err := route.NewConfig().NewProvider()
	if err != nil {
		return fmt.Errorf("route: %w", err)
	}

	navCtl, err := nav.NewConfig().NewController(fixes, hdg, act)
	if err != nil {
		return fmt.Errorf("nav: %w", err)
	}
	navCtl.Metrics = nav.NewMetrics(reg)

	conf := navbot.NewConfig()
	bot, err := conf.NewController(l1env, navCtl, tracker, routes)
	if err != nil {
		return fmt.Errorf("navbot: %w", err)
	}
	bot.Metrics = navbot.NewMetrics(reg)

	runner := fx.NewRunner().HandleSignals()
	runner.Go(
		fx.Critical(tracker),
		fx.NamedRun("loop", fx.NewLoop().Add(l1env, bot)),
	)
	if conf.HTTPAddr != "" {
		runner.Go(&navbot.Server{Addr: conf.HTTPAddr, Handler: bot.NewRouter(reg)})
	} else if l1env.Hub != nil {
		glog.Warning("HTTP disabled, websocket connections can't be accepted")
	}
	return runner.Wait()
}
