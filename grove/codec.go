package grove

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DataCodec serializes payloads for WriteTo and ReadGrove. DecodeData
// must not retain src, which may be a read-only file mapping.
type DataCodec[D any] interface {
	AppendData(dst []byte, d D) ([]byte, error)
	DecodeData(src []byte) (D, error)
}

// JSONCodec encodes payloads with encoding/json semantics.
type JSONCodec[D any] struct{}

func (JSONCodec[D]) AppendData(dst []byte, d D) ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return dst, errors.Wrap(err, "marshal payload")
	}
	return append(dst, b...), nil
}

func (JSONCodec[D]) DecodeData(src []byte) (D, error) {
	var d D
	if err := json.Unmarshal(src, &d); err != nil {
		return d, errors.Wrap(err, "unmarshal payload")
	}
	return d, nil
}

func codecFor[D any](o options) (DataCodec[D], error) {
	if o.codec == nil {
		return JSONCodec[D]{}, nil
	}
	c, ok := o.codec.(DataCodec[D])
	if !ok {
		return nil, errors.Errorf("data codec %T does not match payload type", o.codec)
	}
	return c, nil
}
