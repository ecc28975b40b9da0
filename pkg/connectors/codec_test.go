package connectors

import (
	"testing"
	"time"
)

func newTestCodec(t *testing.T) *codec {
	t.Helper()
	c, err := newCodec()
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}
	t.Cleanup(c.close)
	return c
}

func TestCompressRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	payload := []byte(`{"name":"obs1","values":[1.5,1.6,1.7]}`)
	out, err := c.decompress(c.compress(payload))
	if err != nil {
		t.Fatalf("decompress() error: %v", err)
	}
	if string(out) != string(payload) {
		t.Error("compress round trip changed the payload")
	}
}

func TestTimestampCodec(t *testing.T) {
	c := newTestCodec(t)

	// regular daily timestamps with one gap
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	timestamps := make([]time.Time, 0, 100)
	for i := 0; i < 100; i++ {
		if i == 40 {
			continue
		}
		timestamps = append(timestamps, start.AddDate(0, 0, i))
	}

	data, err := c.encodeTimestamps(timestamps)
	if err != nil {
		t.Fatalf("encodeTimestamps() error: %v", err)
	}
	back, err := c.decodeTimestamps(data, len(timestamps))
	if err != nil {
		t.Fatalf("decodeTimestamps() error: %v", err)
	}
	for i := range timestamps {
		if !back[i].Equal(timestamps[i]) {
			t.Fatalf("timestamp %d = %v, want %v", i, back[i], timestamps[i])
		}
	}

	// a regular series compresses to a small fraction of 8 bytes/sample
	if len(data) >= 8*len(timestamps)/2 {
		t.Errorf("encoded size = %d bytes for %d timestamps, expected heavy compression",
			len(data), len(timestamps))
	}
}

func TestValueCodec(t *testing.T) {
	c := newTestCodec(t)

	values := []float64{1.5, 1.5, 1.6, -2.25, 0, 1e-9, 12345.678}
	data, err := c.encodeValues(values)
	if err != nil {
		t.Fatalf("encodeValues() error: %v", err)
	}
	back, err := c.decodeValues(data, len(values))
	if err != nil {
		t.Fatalf("decodeValues() error: %v", err)
	}
	for i := range values {
		if back[i] != values[i] {
			t.Fatalf("value %d = %v, want %v", i, back[i], values[i])
		}
	}
}

func TestCodecEmpty(t *testing.T) {
	c := newTestCodec(t)

	if data, err := c.encodeTimestamps(nil); err != nil || data != nil {
		t.Errorf("encodeTimestamps(nil) = %v, %v", data, err)
	}
	if out, err := c.decodeTimestamps(nil, 0); err != nil || out != nil {
		t.Errorf("decodeTimestamps(nil, 0) = %v, %v", out, err)
	}
	if data, err := c.encodeValues(nil); err != nil || data != nil {
		t.Errorf("encodeValues(nil) = %v, %v", data, err)
	}
}
