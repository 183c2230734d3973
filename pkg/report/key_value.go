package report

import (
	"github.com/Frefreak/otlp-toolkit/pkg/keyvalue"
	"go.opentelemetry.io/otel/attribute"
	otelLog "go.opentelemetry.io/otel/log"
)

// KeyValue is a resource tag, attribute or metadata pair from the command line.
type KeyValue = keyvalue.KeyValue

func toAttributes(kvs []KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(kvs))
	for i, kv := range kvs {
		attrs[i] = attribute.String(kv.Key, kv.Value)
	}
	return attrs
}

func toLogAttributes(kvs []KeyValue) []otelLog.KeyValue {
	attrs := make([]otelLog.KeyValue, len(kvs))
	for i, kv := range kvs {
		attrs[i] = otelLog.String(kv.Key, kv.Value)
	}
	return attrs
}

func toHeaders(kvs []KeyValue) map[string]string {
	if len(kvs) == 0 {
		return nil
	}
	headers := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		headers[kv.Key] = kv.Value
	}
	return headers
}
