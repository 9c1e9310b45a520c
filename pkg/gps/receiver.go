package gps

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/geo"
)

// ErrTransportLost indicates the sentence stream is gone.
var ErrTransportLost = errors.New("positioning transport lost")

// MaxSentenceLength bounds a line. Longer lines are dropped up to the
// next line break.
const MaxSentenceLength = 1024

// Receiver decodes fixes from a line-oriented NMEA stream.
// Frames which are not positional, void or malformed are dropped.
type Receiver struct {
	Sentence       string
	VerifyChecksum bool
	Metrics        *Metrics

	reader    io.Reader
	lineCh    chan string
	done      chan struct{}
	err       error
	skipping  bool
	startOnce sync.Once
	closeOnce sync.Once
}

// NewReceiver creates a Receiver reading from r.
func NewReceiver(r io.Reader) *Receiver {
	return &Receiver{
		Sentence: SentenceGPRMC,
		reader:   r,
		lineCh:   make(chan string),
		done:     make(chan struct{}),
	}
}

// Decode decodes a single line using the Receiver settings.
func (r *Receiver) Decode(line string) (geo.Point, error) {
	if r.VerifyChecksum {
		if err := VerifyChecksum(line); err != nil {
			return geo.Point{}, err
		}
	}
	marker := r.Sentence
	if marker == "" {
		marker = SentenceGPRMC
	}
	return ParseSentence(line, marker)
}

// NextFix blocks until a valid fix is decoded, the stream fails
// or ctx is done.
func (r *Receiver) NextFix(ctx context.Context) (geo.Point, error) {
	r.startOnce.Do(func() { go r.readLoop() })
	for {
		select {
		case <-ctx.Done():
			return geo.Point{}, ctx.Err()
		case line, ok := <-r.lineCh:
			if !ok {
				return geo.Point{}, r.err
			}
			p, err := r.Decode(line)
			if err != nil {
				glog.V(3).Infof("drop %q: %v", line, err)
				r.Metrics.sentence(err)
				continue
			}
			r.Metrics.sentence(nil)
			return p, nil
		}
	}
}

// Close stops reading and closes the underlying stream if possible.
func (r *Receiver) Close() (err error) {
	r.closeOnce.Do(func() {
		close(r.done)
		if closer, ok := r.reader.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return
}

func (r *Receiver) readLoop() {
	defer close(r.lineCh)
	scanner := bufio.NewScanner(r.reader)
	scanner.Buffer(make([]byte, 0, 256), MaxSentenceLength)
	scanner.Split(r.splitLines)
	for scanner.Scan() {
		select {
		case r.lineCh <- scanner.Text():
		case <-r.done:
			r.err = fmt.Errorf("%w: receiver closed", ErrTransportLost)
			return
		}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	r.err = fmt.Errorf("%w: %w", ErrTransportLost, err)
}

// splitLines is bufio.ScanLines which drops lines longer than
// MaxSentenceLength instead of failing the scan.
func (r *Receiver) splitLines(data []byte, atEOF bool) (int, []byte, error) {
	if r.skipping {
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			r.skipping = false
			return i + 1, nil, nil
		}
		return len(data), nil, nil
	}
	advance, token, err := bufio.ScanLines(data, atEOF)
	if advance == 0 && token == nil && err == nil && len(data) >= MaxSentenceLength {
		glog.V(3).Infof("drop line longer than %d bytes", MaxSentenceLength)
		r.Metrics.sentence(fmt.Errorf("%w: line too long", ErrMalformed))
		r.skipping = true
		return len(data), nil, nil
	}
	return advance, token, err
}
