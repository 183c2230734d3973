package model

import "strings"

type LogsExport struct {
	ResourceLogs []ResourceLogs
}

type ResourceLogs struct {
	Resource  *Resource
	ScopeLogs []ScopeLogs
	SchemaURL string
}

type ScopeLogs struct {
	Scope      *InstrumentationScope
	LogRecords []LogRecord
	SchemaURL  string
}

func (l *LogsExport) RecordCount() int {
	count := 0
	for _, rl := range l.ResourceLogs {
		for _, sl := range rl.ScopeLogs {
			count += len(sl.LogRecords)
		}
	}
	return count
}

type SeverityNumber int32

var severityNames = []string{
	"UNSPECIFIED",
	"TRACE", "TRACE2", "TRACE3", "TRACE4",
	"DEBUG", "DEBUG2", "DEBUG3", "DEBUG4",
	"INFO", "INFO2", "INFO3", "INFO4",
	"WARN", "WARN2", "WARN3", "WARN4",
	"ERROR", "ERROR2", "ERROR3", "ERROR4",
	"FATAL", "FATAL2", "FATAL3", "FATAL4",
}

func (s SeverityNumber) String() string {
	if s >= 0 && int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

type LogRecord struct {
	TimeUnixNano           uint64
	ObservedTimeUnixNano   uint64
	SeverityNumber         SeverityNumber
	SeverityText           string
	Body                   AttributeValue
	Attributes             Attributes
	DroppedAttributesCount uint32
	Flags                  uint32
	TraceID                TraceID
	SpanID                 SpanID
	EventName              string
}

// ParseSeverityNumber maps a severity name such as "WARN" or "error2" to its
// number.
func ParseSeverityNumber(s string) (SeverityNumber, bool) {
	s = strings.TrimPrefix(strings.ToUpper(s), "SEVERITY_NUMBER_")
	for i, name := range severityNames {
		if name == s {
			return SeverityNumber(i), true
		}
	}
	return 0, false
}
