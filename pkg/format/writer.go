package format

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"strings"
	"time"
)

const indentUnit = "  "

type writer struct {
	sb    strings.Builder
	depth int
}

func (w *writer) line(format string, args ...any) {
	w.sb.WriteString(strings.Repeat(indentUnit, w.depth))
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

func (w *writer) nest(header string, body func()) {
	w.line("%s", header)
	w.depth++
	body()
	w.depth--
}

func (w *writer) String() string {
	return w.sb.String()
}

func (w *writer) attributes(name string, attrs model.Attributes, dropped uint32) {
	if len(attrs) > 0 {
		w.nest(name+":", func() {
			for _, kv := range attrs {
				w.line("%s = %s", kv.Key, Value(kv.Value))
			}
		})
	}
	if dropped > 0 {
		w.line("dropped_%s_count: %d", name, dropped)
	}
}

func (w *writer) resource(res *model.Resource) {
	if res == nil {
		return
	}
	w.nest("resource:", func() {
		w.attributes("attributes", res.Attributes, res.DroppedAttributesCount)
	})
}

func (w *writer) scope(scope *model.InstrumentationScope) {
	if scope == nil {
		return
	}
	w.nest("scope:", func() {
		w.line("name: %q", scope.Name)
		if scope.Version != "" {
			w.line("version: %q", scope.Version)
		}
		w.attributes("attributes", scope.Attributes, scope.DroppedAttributesCount)
	})
}

func (w *writer) schemaURL(url string) {
	if url != "" {
		w.line("schema_url: %s", url)
	}
}

// Timestamp renders nanoseconds since the epoch in UTC. Zero renders as "-".
func Timestamp(ns uint64) string {
	if ns == 0 {
		return "-"
	}
	return model.UnixNano(ns).Format(time.RFC3339Nano)
}
