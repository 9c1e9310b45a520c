package gps

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestReceiverSkipsInvalidFrames(t *testing.T) {
	stream := strings.Join([]string{
		"garbage",
		"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47",
		"$GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A",
		"$GPRMC,123519,A,48",
		sampleRMC,
		"$GPRMC,1,A,1258.200,N,07736.600,E",
	}, "\r\n") + "\r\n"
	m := NewMetrics(prometheus.NewRegistry())
	r := NewReceiver(strings.NewReader(stream))
	r.Metrics = m
	ctx := context.Background()

	p, err := r.NextFix(ctx)
	require.NoError(t, err)
	require.InDelta(t, 48.1173, p.Lat, 1e-4)
	require.InDelta(t, 11.5167, p.Lon, 1e-4)

	p, err = r.NextFix(ctx)
	require.NoError(t, err)
	require.InDelta(t, 12.97, p.Lat, 1e-4)

	_, err = r.NextFix(ctx)
	require.ErrorIs(t, err, ErrTransportLost)
	_, err = r.NextFix(ctx)
	require.ErrorIs(t, err, ErrTransportLost)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Sentences.WithLabelValues("fix")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Sentences.WithLabelValues("void")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Sentences.WithLabelValues("other")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Sentences.WithLabelValues("malformed")))
}

func TestReceiverDropsOversizedLines(t *testing.T) {
	testCases := []struct {
		name   string
		stream string
	}{
		{"long line", strings.Repeat("x", 70000) + "\n" + sampleRMC + "\n"},
		{"long line with crlf", strings.Repeat("$GPRMC,", 10000) + "\r\n" + sampleRMC + "\r\n"},
		{"exactly at limit", strings.Repeat("x", MaxSentenceLength) + "\n" + sampleRMC + "\n"},
		{"non-finite frame", "$GPRMC,123519,A,48NaN,N,01131.000,E\n" + sampleRMC + "\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMetrics(prometheus.NewRegistry())
			r := NewReceiver(strings.NewReader(tc.stream))
			r.Metrics = m
			p, err := r.NextFix(context.Background())
			require.NoError(t, err)
			require.InDelta(t, 48.1173, p.Lat, 1e-4)
			require.InDelta(t, 11.5167, p.Lon, 1e-4)
			require.Equal(t, 1.0, testutil.ToFloat64(m.Sentences.WithLabelValues("malformed")))
			_, err = r.NextFix(context.Background())
			require.ErrorIs(t, err, ErrTransportLost)
		})
	}
}

func TestReceiverOversizedTailIsDropped(t *testing.T) {
	// the trailing garbage has no line break before EOF.
	r := NewReceiver(strings.NewReader(sampleRMC + "\n" + strings.Repeat("y", 5000)))
	_, err := r.NextFix(context.Background())
	require.NoError(t, err)
	_, err = r.NextFix(context.Background())
	require.ErrorIs(t, err, ErrTransportLost)
	require.ErrorIs(t, err, io.EOF)
}

func TestReceiverChecksum(t *testing.T) {
	body := "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"
	stream := "$" + body + "*00\n" + withChecksum(strings.Replace(body, "4807.038", "4907.038", 1)) + "\n"
	r := NewReceiver(strings.NewReader(stream))
	r.VerifyChecksum = true
	p, err := r.NextFix(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 49.1173, p.Lat, 1e-4)
}

func TestReceiverCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	r := NewReceiver(pr)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.NextFix(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the void frame keeps the receiver waiting.
	go io.WriteString(pw, "$GPRMC,123519,V,4807.038,N,01131.000,E\n")
	ctx1, cancel1 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel1()
	_, err = r.NextFix(ctx1)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go io.WriteString(pw, sampleRMC+"\n")
	p, err := r.NextFix(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 48.1173, p.Lat, 1e-4)
}

func TestReceiverClose(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	r := NewReceiver(pr)
	errCh := make(chan error, 1)
	go func() {
		_, err := r.NextFix(context.Background())
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, r.Close())
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrTransportLost)
	case <-time.After(time.Second):
		t.Fatal("NextFix not released by Close")
	}
}
