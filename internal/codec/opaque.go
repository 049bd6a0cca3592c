package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EnvelopeVersion is the leading byte of every opaque value. The payload
// that follows is MessagePack.
const EnvelopeVersion byte = 1

var (
	ErrEmptyEnvelope   = errors.New("empty opaque envelope")
	ErrEnvelopeVersion = errors.New("unsupported opaque envelope version")
)

// EncodeOpaque serialises v into a versioned envelope.
func EncodeOpaque(v any) ([]byte, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode opaque %T: %w", v, err)
	}
	out := make([]byte, 0, len(payload)+1)
	out = append(out, EnvelopeVersion)
	return append(out, payload...), nil
}

// DecodeOpaque decodes an envelope produced by EncodeOpaque into dst, which
// must be a non-nil pointer. Numbers held in interface values come back as
// int64, uint64 or float64 whatever width they were encoded with.
func DecodeOpaque(b []byte, dst any) error {
	if len(b) == 0 {
		return ErrEmptyEnvelope
	}
	if b[0] != EnvelopeVersion {
		return fmt.Errorf("%w: %d", ErrEnvelopeVersion, b[0])
	}
	dec := msgpack.NewDecoder(bytes.NewReader(b[1:]))
	dec.UseLooseInterfaceDecoding(true)
	return dec.Decode(dst)
}
