package decoder

import (
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/wire"
)

func (d *Decoder) resourceSpans(r *wire.Reader, f wire.Field) (model.ResourceSpans, error) {
	return nested(r, f, d.readResourceSpans)
}

func (d *Decoder) readResourceSpans(r *wire.Reader) (model.ResourceSpans, error) {
	var rs model.ResourceSpans
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return rs, err
		}
		switch f.Number {
		case 1:
			rs.Resource, err = nested(r, f, d.readResource)
		case 2:
			var ss model.ScopeSpans
			if ss, err = nested(r, f, d.readScopeSpans); err == nil {
				rs.ScopeSpans = append(rs.ScopeSpans, ss)
			}
		case 3:
			rs.SchemaURL, err = r.String(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return rs, err
		}
	}
	return rs, nil
}

func (d *Decoder) readScopeSpans(r *wire.Reader) (model.ScopeSpans, error) {
	var ss model.ScopeSpans
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return ss, err
		}
		switch f.Number {
		case 1:
			ss.Scope, err = nested(r, f, d.readScope)
		case 2:
			var span model.Span
			if span, err = nested(r, f, d.readSpan); err == nil {
				ss.Spans = append(ss.Spans, span)
			}
		case 3:
			ss.SchemaURL, err = r.String(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return ss, err
		}
	}
	return ss, nil
}

func (d *Decoder) readSpan(r *wire.Reader) (model.Span, error) {
	var s model.Span
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return s, err
		}
		switch f.Number {
		case 1:
			s.TraceID, err = d.traceID(r, f)
		case 2:
			s.SpanID, err = d.spanID(r, f)
		case 3:
			s.TraceState, err = r.String(f)
		case 4:
			s.ParentSpanID, err = d.spanID(r, f)
		case 5:
			s.Name, err = r.String(f)
		case 6:
			var kind int32
			kind, err = r.Int32(f)
			s.Kind = model.SpanKind(kind)
		case 7:
			s.StartTimeUnixNano, err = r.Fixed64(f)
		case 8:
			s.EndTimeUnixNano, err = r.Fixed64(f)
		case 9:
			s.Attributes, err = d.appendKeyValue(s.Attributes, r, f)
		case 10:
			s.DroppedAttributesCount, err = r.Uint32(f)
		case 11:
			var ev model.Event
			if ev, err = nested(r, f, d.readEvent); err == nil {
				s.Events = append(s.Events, ev)
			}
		case 12:
			s.DroppedEventsCount, err = r.Uint32(f)
		case 13:
			var link model.Link
			if link, err = nested(r, f, d.readLink); err == nil {
				s.Links = append(s.Links, link)
			}
		case 14:
			s.DroppedLinksCount, err = r.Uint32(f)
		case 15:
			s.Status, err = nested(r, f, d.readStatus)
		case 16:
			s.Flags, err = r.Fixed32(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

func (d *Decoder) readEvent(r *wire.Reader) (model.Event, error) {
	var ev model.Event
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return ev, err
		}
		switch f.Number {
		case 1:
			ev.TimeUnixNano, err = r.Fixed64(f)
		case 2:
			ev.Name, err = r.String(f)
		case 3:
			ev.Attributes, err = d.appendKeyValue(ev.Attributes, r, f)
		case 4:
			ev.DroppedAttributesCount, err = r.Uint32(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return ev, err
		}
	}
	return ev, nil
}

func (d *Decoder) readLink(r *wire.Reader) (model.Link, error) {
	var link model.Link
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return link, err
		}
		switch f.Number {
		case 1:
			link.TraceID, err = d.traceID(r, f)
		case 2:
			link.SpanID, err = d.spanID(r, f)
		case 3:
			link.TraceState, err = r.String(f)
		case 4:
			link.Attributes, err = d.appendKeyValue(link.Attributes, r, f)
		case 5:
			link.DroppedAttributesCount, err = r.Uint32(f)
		case 6:
			link.Flags, err = r.Fixed32(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return link, err
		}
	}
	return link, nil
}

func (d *Decoder) readStatus(r *wire.Reader) (model.Status, error) {
	var st model.Status
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return st, err
		}
		switch f.Number {
		case 2:
			st.Message, err = r.String(f)
		case 3:
			var code int32
			code, err = r.Int32(f)
			st.Code = model.StatusCode(code)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return st, err
		}
	}
	return st, nil
}
