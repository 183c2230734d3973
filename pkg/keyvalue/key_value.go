// Package keyvalue parses the key=value pairs taken by command line flags
// such as --attr, --rtags and --metadata.
package keyvalue

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("invalid format (expect key=value)")

type KeyValue struct {
	Key   string
	Value string
}

func (kv KeyValue) String() string {
	return kv.Key + "=" + kv.Value
}

// Parse splits on the first '=' so values may themselves contain '='.
func Parse(s string) (KeyValue, error) {
	key, value, found := strings.Cut(s, "=")
	if !found {
		return KeyValue{}, fmt.Errorf("%q: %w", s, ErrInvalid)
	}
	return KeyValue{Key: key, Value: value}, nil
}

func ParseAll(values []string) ([]KeyValue, error) {
	kvs := make([]KeyValue, 0, len(values))
	for _, v := range values {
		kv, err := Parse(v)
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, kv)
	}
	return kvs, nil
}
