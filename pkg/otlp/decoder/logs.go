package decoder

import (
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/wire"
)

func (d *Decoder) resourceLogs(r *wire.Reader, f wire.Field) (model.ResourceLogs, error) {
	return nested(r, f, d.readResourceLogs)
}

func (d *Decoder) readResourceLogs(r *wire.Reader) (model.ResourceLogs, error) {
	var rl model.ResourceLogs
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return rl, err
		}
		switch f.Number {
		case 1:
			rl.Resource, err = nested(r, f, d.readResource)
		case 2:
			var sl model.ScopeLogs
			if sl, err = nested(r, f, d.readScopeLogs); err == nil {
				rl.ScopeLogs = append(rl.ScopeLogs, sl)
			}
		case 3:
			rl.SchemaURL, err = r.String(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return rl, err
		}
	}
	return rl, nil
}

func (d *Decoder) readScopeLogs(r *wire.Reader) (model.ScopeLogs, error) {
	var sl model.ScopeLogs
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return sl, err
		}
		switch f.Number {
		case 1:
			sl.Scope, err = nested(r, f, d.readScope)
		case 2:
			var rec model.LogRecord
			if rec, err = nested(r, f, d.readLogRecord); err == nil {
				sl.LogRecords = append(sl.LogRecords, rec)
			}
		case 3:
			sl.SchemaURL, err = r.String(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return sl, err
		}
	}
	return sl, nil
}

func (d *Decoder) readLogRecord(r *wire.Reader) (model.LogRecord, error) {
	var rec model.LogRecord
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return rec, err
		}
		switch f.Number {
		case 1:
			rec.TimeUnixNano, err = r.Fixed64(f)
		case 2:
			var sev int32
			sev, err = r.Int32(f)
			rec.SeverityNumber = model.SeverityNumber(sev)
		case 3:
			rec.SeverityText, err = r.String(f)
		case 5:
			rec.Body, err = nested(r, f, d.readAnyValue)
		case 6:
			rec.Attributes, err = d.appendKeyValue(rec.Attributes, r, f)
		case 7:
			rec.DroppedAttributesCount, err = r.Uint32(f)
		case 8:
			rec.Flags, err = r.Fixed32(f)
		case 9:
			rec.TraceID, err = d.traceID(r, f)
		case 10:
			rec.SpanID, err = d.spanID(r, f)
		case 11:
			rec.ObservedTimeUnixNano, err = r.Fixed64(f)
		case 12:
			rec.EventName, err = r.String(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return rec, err
		}
	}
	return rec, nil
}
