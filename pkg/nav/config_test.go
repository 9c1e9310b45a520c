package nav

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/drive"
)

func TestDefaults(t *testing.T) {
	conf := Config{
		Tolerance:      DefaultTolerance,
		Gain:           DefaultGain,
		BaseSpeed:      DefaultBaseSpeed,
		TickInterval:   DefaultTickInterval,
		SettleInterval: DefaultSettleInterval,
	}
	require.Equal(t, 1.0, conf.Tolerance)
	require.Equal(t, 0.01, conf.Gain)
	require.Equal(t, 0.5, conf.BaseSpeed)
	require.Equal(t, 200*time.Millisecond, conf.TickInterval)
	require.Equal(t, time.Second, conf.SettleInterval)
	require.NoError(t, conf.Validate())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative tolerance", func(c *Config) { c.Tolerance = -1 }},
		{"zero tolerance", func(c *Config) { c.Tolerance = 0 }},
		{"negative gain", func(c *Config) { c.Gain = -0.01 }},
		{"negative speed", func(c *Config) { c.BaseSpeed = -0.5 }},
		{"speed above 1", func(c *Config) { c.BaseSpeed = 1.5 }},
		{"negative tick", func(c *Config) { c.TickInterval = -time.Second }},
		{"negative settle", func(c *Config) { c.SettleInterval = -time.Second }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := fastConfig()
			tc.modify(conf)
			require.ErrorIs(t, conf.Validate(), ErrInvalidConfig)
			_, err := conf.NewController(&scriptedSource{}, nil, &drive.Recorder{})
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewControllerRequiresCollaborators(t *testing.T) {
	_, err := fastConfig().NewController(nil, nil, &drive.Recorder{})
	require.Error(t, err)
	_, err = fastConfig().NewController(&scriptedSource{}, nil, nil)
	require.Error(t, err)
	ctl, err := fastConfig().NewController(&scriptedSource{}, nil, &drive.Recorder{})
	require.NoError(t, err)
	require.NotNil(t, ctl.Heading)
}

func TestTurnClamp(t *testing.T) {
	conf := fastConfig()
	conf.Gain = DefaultGain
	require.Equal(t, 1.0, conf.Turn(1000))
	require.Equal(t, -1.0, conf.Turn(-1000))
	require.InDelta(t, 0.5, conf.Turn(50), 1e-12)
	require.Zero(t, conf.Turn(0))
}

func TestSteer(t *testing.T) {
	testCases := []struct {
		name        string
		speed       float64
		err         float64
		left, right float64
	}{
		{"straight", 0.5, 0, 0.5, 0.5},
		{"hard right", 0.5, 1000, 0, 1},
		{"hard left", 0.5, -1000, 1, 0},
		{"slight", 0.5, 20, 0.4, 0.6},
		{"fast clamps", 0.8, 50, 0.4, 1},
		{"zero speed", 0, 90, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := fastConfig()
			conf.Gain = DefaultGain
			conf.BaseSpeed = tc.speed
			cmd := conf.Steer(tc.err)
			require.InDelta(t, tc.left, cmd.Left, 1e-12)
			require.InDelta(t, tc.right, cmd.Right, 1e-12)
			require.True(t, cmd.LeftForward)
			require.True(t, cmd.RightForward)
		})
	}
}

func TestLoadFrom(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
tolerance: 2.5
gain: 0.02
base_speed: 0.6
tick_interval: 100ms
settle_interval: 2s
`)))
	conf := fastConfig()
	conf.BaseSpeed = 0.3
	require.NoError(t, conf.LoadFrom(v, map[string]bool{flagBaseSpeed: true}))
	require.Equal(t, 2.5, conf.Tolerance)
	require.Equal(t, 0.02, conf.Gain)
	require.Equal(t, 0.3, conf.BaseSpeed)
	require.Equal(t, 100*time.Millisecond, conf.TickInterval)
	require.Equal(t, 2*time.Second, conf.SettleInterval)

	v = viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString("gain: -1\n")))
	require.ErrorIs(t, fastConfig().LoadFrom(v, nil), ErrInvalidConfig)
}
