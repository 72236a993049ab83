package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Direction tells whether a captured chunk was sent or received.
type Direction uint8

const (
	DirSend Direction = iota + 1
	DirReceive
)

func (d Direction) String() string {
	switch d {
	case DirSend:
		return "send"
	case DirReceive:
		return "receive"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Record is one captured chunk of traffic.
type Record struct {
	Time      time.Time `cbor:"1,keyasint"`
	Direction Direction `cbor:"2,keyasint"`
	Data      []byte    `cbor:"3,keyasint"`
}

var (
	captureEncMode cbor.EncMode
	captureDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}
	captureEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("transport: capture encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyQuiet,
	}
	captureDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("transport: capture decoder mode: %v", err))
	}
}

// CaptureWriter writes Records to a CBOR stream. It is safe for concurrent use.
type CaptureWriter struct {
	mu  sync.Mutex
	enc *cbor.Encoder
	now func() time.Time
}

// NewCaptureWriter returns a CaptureWriter writing to w.
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	return &CaptureWriter{enc: captureEncMode.NewEncoder(w), now: time.Now}
}

// Write appends one record. data is copied.
func (c *CaptureWriter) Write(dir Direction, data []byte) error {
	rec := Record{Direction: dir, Data: append([]byte(nil), data...)}

	c.mu.Lock()
	defer c.mu.Unlock()

	rec.Time = c.now()

	return c.enc.Encode(rec)
}

// ReadCapture decodes every record in r.
func ReadCapture(r io.Reader) ([]Record, error) {
	dec := captureDecMode.NewDecoder(r)

	var records []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}

			return records, fmt.Errorf("transport: read capture: %w", err)
		}
		records = append(records, rec)
	}
}
