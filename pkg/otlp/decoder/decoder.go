package decoder

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/wire"
	"strings"
)

type (
	DecodeError = wire.DecodeError
	Reason      = wire.Reason
)

type IDPolicy int

const (
	// IDPolicyStrict rejects non-empty ids whose length is not exact.
	IDPolicyStrict IDPolicy = iota
	// IDPolicyPad left-pads short ids with zero bytes. Long ids are still rejected.
	IDPolicyPad
)

func ParseIDPolicy(s string) (IDPolicy, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return IDPolicyStrict, nil
	case "pad":
		return IDPolicyPad, nil
	}
	return IDPolicyStrict, fmt.Errorf("unknown id policy %q (expect strict or pad)", s)
}

// Decoder turns OTLP protobuf payloads into model trees. It holds no state
// between calls and is safe for concurrent use.
type Decoder struct {
	limits   wire.Limits
	idPolicy IDPolicy
}

type Option func(*Decoder)

func WithMaxDepth(depth int) Option {
	return func(d *Decoder) {
		d.limits.MaxDepth = depth
	}
}

func WithMaxNodes(nodes int) Option {
	return func(d *Decoder) {
		d.limits.MaxNodes = nodes
	}
}

func WithIDPolicy(policy IDPolicy) Option {
	return func(d *Decoder) {
		d.idPolicy = policy
	}
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		limits: wire.Limits{
			MaxDepth: wire.DefaultMaxDepth,
			MaxNodes: wire.DefaultMaxNodes,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// DecodeTraces decodes an ExportTraceServiceRequest with default limits.
func DecodeTraces(b []byte) (*model.TraceExport, error) {
	return defaultDecoder.DecodeTraces(b)
}

func DecodeMetrics(b []byte) (*model.MetricsExport, error) {
	return defaultDecoder.DecodeMetrics(b)
}

func DecodeLogs(b []byte) (*model.LogsExport, error) {
	return defaultDecoder.DecodeLogs(b)
}

func (d *Decoder) reader(b []byte) *wire.Reader {
	return wire.NewReader(b, d.limits)
}

func (d *Decoder) DecodeTraces(b []byte) (*model.TraceExport, error) {
	r := d.reader(b)
	export := &model.TraceExport{}
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch f.Number {
		case 1:
			rs, err := d.resourceSpans(r, f)
			if err != nil {
				return nil, err
			}
			export.ResourceSpans = append(export.ResourceSpans, rs)
		default:
			if err := r.Skip(f); err != nil {
				return nil, err
			}
		}
	}
	return export, nil
}

func (d *Decoder) DecodeMetrics(b []byte) (*model.MetricsExport, error) {
	r := d.reader(b)
	export := &model.MetricsExport{}
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch f.Number {
		case 1:
			rm, err := d.resourceMetrics(r, f)
			if err != nil {
				return nil, err
			}
			export.ResourceMetrics = append(export.ResourceMetrics, rm)
		default:
			if err := r.Skip(f); err != nil {
				return nil, err
			}
		}
	}
	return export, nil
}

func (d *Decoder) DecodeLogs(b []byte) (*model.LogsExport, error) {
	r := d.reader(b)
	export := &model.LogsExport{}
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch f.Number {
		case 1:
			rl, err := d.resourceLogs(r, f)
			if err != nil {
				return nil, err
			}
			export.ResourceLogs = append(export.ResourceLogs, rl)
		default:
			if err := r.Skip(f); err != nil {
				return nil, err
			}
		}
	}
	return export, nil
}

// DecodeRaw dumps the payload without a schema.
func (d *Decoder) DecodeRaw(b []byte) ([]wire.RawField, error) {
	return wire.Dump(b, d.limits)
}
