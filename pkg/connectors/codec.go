package connectors

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/klauspost/compress/zstd"
)

// codec compresses item payloads. Series columns get delta-of-delta
// (timestamps) and XOR (values) pre-encoding before zstd.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &codec{enc: enc, dec: dec}, nil
}

func (c *codec) close() {
	if c.enc != nil {
		c.enc.Close()
	}
	if c.dec != nil {
		c.dec.Close()
	}
}

// compress zstd-compresses an arbitrary payload.
func (c *codec) compress(data []byte) []byte {
	return c.enc.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// decompress reverses compress.
func (c *codec) decompress(data []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}

// encodeTimestamps delta-of-delta encodes timestamps (millisecond
// precision) and compresses the result.
func (c *codec) encodeTimestamps(timestamps []time.Time) ([]byte, error) {
	if len(timestamps) == 0 {
		return nil, nil
	}
	buf := new(bytes.Buffer)
	first := timestamps[0].UnixMilli()
	if err := binary.Write(buf, binary.LittleEndian, first); err != nil {
		return nil, err
	}
	var prev, prevDelta int64 = first, 0
	for _, t := range timestamps[1:] {
		ms := t.UnixMilli()
		delta := ms - prev
		if err := binary.Write(buf, binary.LittleEndian, delta-prevDelta); err != nil {
			return nil, err
		}
		prev, prevDelta = ms, delta
	}
	return c.compress(buf.Bytes()), nil
}

// decodeTimestamps reverses encodeTimestamps.
func (c *codec) decodeTimestamps(data []byte, count int) ([]time.Time, error) {
	if count == 0 {
		return nil, nil
	}
	raw, err := c.decompress(data)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewReader(raw)
	out := make([]time.Time, count)
	var ms int64
	if err := binary.Read(buf, binary.LittleEndian, &ms); err != nil {
		return nil, err
	}
	out[0] = time.UnixMilli(ms).UTC()
	var prevDelta int64
	for i := 1; i < count; i++ {
		var dod int64
		if err := binary.Read(buf, binary.LittleEndian, &dod); err != nil {
			return nil, err
		}
		prevDelta += dod
		ms += prevDelta
		out[i] = time.UnixMilli(ms).UTC()
	}
	return out, nil
}

// encodeValues XOR-encodes float64 values and compresses the result.
func (c *codec) encodeValues(values []float64) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	buf := new(bytes.Buffer)
	prev := math.Float64bits(values[0])
	if err := binary.Write(buf, binary.LittleEndian, prev); err != nil {
		return nil, err
	}
	for _, v := range values[1:] {
		bits := math.Float64bits(v)
		if err := binary.Write(buf, binary.LittleEndian, bits^prev); err != nil {
			return nil, err
		}
		prev = bits
	}
	return c.compress(buf.Bytes()), nil
}

// decodeValues reverses encodeValues.
func (c *codec) decodeValues(data []byte, count int) ([]float64, error) {
	if count == 0 {
		return nil, nil
	}
	raw, err := c.decompress(data)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewReader(raw)
	out := make([]float64, count)
	var prev uint64
	if err := binary.Read(buf, binary.LittleEndian, &prev); err != nil {
		return nil, err
	}
	out[0] = math.Float64frombits(prev)
	for i := 1; i < count; i++ {
		var x uint64
		if err := binary.Read(buf, binary.LittleEndian, &x); err != nil {
			return nil, err
		}
		prev ^= x
		out[i] = math.Float64frombits(prev)
	}
	return out, nil
}
