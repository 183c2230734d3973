package decoder

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/wire"
	"math"
)

// nested opens the submessage carried by f and decodes it with read.
func nested[T any](parent *wire.Reader, f wire.Field, read func(*wire.Reader) (T, error)) (T, error) {
	r, err := parent.Message(f)
	if err != nil {
		var zero T
		return zero, err
	}
	return read(r)
}

func (d *Decoder) fillID(r *wire.Reader, f wire.Field, dst []byte) error {
	b, err := r.Bytes(f)
	if err != nil {
		return err
	}
	switch {
	case len(b) == 0:
		return nil
	case len(b) == len(dst):
		copy(dst, b)
		return nil
	case len(b) < len(dst) && d.idPolicy == IDPolicyPad:
		copy(dst[len(dst)-len(b):], b)
		return nil
	}
	return &wire.DecodeError{
		Reason: wire.ReasonInvalidID,
		Offset: f.Offset,
		Detail: fmt.Sprintf("field %d is %d bytes, want %d", f.Number, len(b), len(dst)),
	}
}

func (d *Decoder) traceID(r *wire.Reader, f wire.Field) (model.TraceID, error) {
	var id model.TraceID
	err := d.fillID(r, f, id[:])
	return id, err
}

func (d *Decoder) spanID(r *wire.Reader, f wire.Field) (model.SpanID, error) {
	var id model.SpanID
	err := d.fillID(r, f, id[:])
	return id, err
}

func (d *Decoder) double(r *wire.Reader, f wire.Field) (float64, error) {
	v, err := r.Fixed64(f)
	return math.Float64frombits(v), err
}

func (d *Decoder) optionalDouble(r *wire.Reader, f wire.Field) (*float64, error) {
	v, err := d.double(r, f)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (d *Decoder) readAnyValue(r *wire.Reader) (model.AttributeValue, error) {
	var v model.AttributeValue
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return v, err
		}
		switch f.Number {
		case 1:
			s, err := r.String(f)
			if err != nil {
				return v, err
			}
			v = model.StringValue(s)
		case 2:
			b, err := r.Bool(f)
			if err != nil {
				return v, err
			}
			v = model.BoolValue(b)
		case 3:
			i, err := r.Int64(f)
			if err != nil {
				return v, err
			}
			v = model.IntValue(i)
		case 4:
			x, err := d.double(r, f)
			if err != nil {
				return v, err
			}
			v = model.DoubleValue(x)
		case 5:
			values, err := nested(r, f, d.readArrayValue)
			if err != nil {
				return v, err
			}
			v = model.ArrayValue(values...)
		case 6:
			kvs, err := nested(r, f, d.readKeyValueList)
			if err != nil {
				return v, err
			}
			v = model.KvListValue(kvs...)
		case 7:
			b, err := r.CopyBytes(f)
			if err != nil {
				return v, err
			}
			if b == nil {
				b = []byte{}
			}
			v = model.BytesValue(b)
		default:
			if err := r.Skip(f); err != nil {
				return v, err
			}
		}
	}
	return v, nil
}

func (d *Decoder) readArrayValue(r *wire.Reader) ([]model.AttributeValue, error) {
	var values []model.AttributeValue
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch f.Number {
		case 1:
			v, err := nested(r, f, d.readAnyValue)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		default:
			if err := r.Skip(f); err != nil {
				return nil, err
			}
		}
	}
	return values, nil
}

func (d *Decoder) readKeyValueList(r *wire.Reader) ([]model.KeyValue, error) {
	var kvs model.Attributes
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch f.Number {
		case 1:
			if kvs, err = d.appendKeyValue(kvs, r, f); err != nil {
				return nil, err
			}
		default:
			if err := r.Skip(f); err != nil {
				return nil, err
			}
		}
	}
	return kvs, nil
}

func (d *Decoder) readKeyValue(r *wire.Reader) (model.KeyValue, error) {
	var kv model.KeyValue
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return kv, err
		}
		switch f.Number {
		case 1:
			if kv.Key, err = r.String(f); err != nil {
				return kv, err
			}
		case 2:
			if kv.Value, err = nested(r, f, d.readAnyValue); err != nil {
				return kv, err
			}
		default:
			if err := r.Skip(f); err != nil {
				return kv, err
			}
		}
	}
	return kv, nil
}

// appendKeyValue keeps duplicates in arrival order.
func (d *Decoder) appendKeyValue(attrs model.Attributes, r *wire.Reader, f wire.Field) (model.Attributes, error) {
	kv, err := nested(r, f, d.readKeyValue)
	if err != nil {
		return attrs, err
	}
	return append(attrs, kv), nil
}

func (d *Decoder) readResource(r *wire.Reader) (*model.Resource, error) {
	res := &model.Resource{}
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch f.Number {
		case 1:
			res.Attributes, err = d.appendKeyValue(res.Attributes, r, f)
		case 2:
			res.DroppedAttributesCount, err = r.Uint32(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (d *Decoder) readScope(r *wire.Reader) (*model.InstrumentationScope, error) {
	scope := &model.InstrumentationScope{}
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch f.Number {
		case 1:
			scope.Name, err = r.String(f)
		case 2:
			scope.Version, err = r.String(f)
		case 3:
			scope.Attributes, err = d.appendKeyValue(scope.Attributes, r, f)
		case 4:
			scope.DroppedAttributesCount, err = r.Uint32(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return nil, err
		}
	}
	return scope, nil
}
