package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll calls.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

func compress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/4))
}

func decompress(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress chunk: %w: %w", chunk.ErrCorruptChunk, err)
	}
	return out, nil
}
