package repositories

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
)

// maxPayloadBytes bounds a decompressed payload.
const maxPayloadBytes = 8 << 20

// payloadCodec stores cache payloads as zstd-compressed JSON arrays.
// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll use.
type payloadCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newPayloadCodec() (*payloadCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPayloadBytes))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &payloadCodec{enc: enc, dec: dec}, nil
}

func (c *payloadCodec) encode(items []catalog.Item) ([]byte, error) {
	if items == nil {
		items = []catalog.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (c *payloadCodec) decode(blob []byte) ([]catalog.Item, error) {
	raw, err := c.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}
	var items []catalog.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return items, nil
}

func (c *payloadCodec) close() {
	c.enc.Close()
	c.dec.Close()
}
