package config

import "time"

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

// DecodeConfig bounds the work a single payload may cause.
type DecodeConfig struct {
	MaxDepth int    `mapstructure:"max_depth" validate:"gte=1"`
	MaxNodes int    `mapstructure:"max_nodes" validate:"gte=1"`
	IDPolicy string `mapstructure:"id_policy" validate:"oneof=strict pad"`
}

type ReportConfig struct {
	Host     string        `mapstructure:"host" validate:"required"`
	Port     int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	Protocol string        `mapstructure:"protocol" validate:"oneof=grpc http g h"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type ReceiverConfig struct {
	GRPCAddress     string `mapstructure:"grpc_address" validate:"required"`
	HTTPAddress     string `mapstructure:"http_address" validate:"required"`
	CaptureCapacity int64  `mapstructure:"capture_capacity" validate:"gte=1"`
}

// ElasticsearchConfig is optional. An empty address list disables the sink.
type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses" validate:"dive,url"`
	Index     string   `mapstructure:"index" validate:"required"`
	FlushSize int      `mapstructure:"flush_size" validate:"gte=1"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
	Signal  string   `mapstructure:"signal" validate:"oneof=traces metrics logs"`
}

type Config struct {
	Log           LogConfig           `mapstructure:"log"`
	Decode        DecodeConfig        `mapstructure:"decode"`
	Report        ReportConfig        `mapstructure:"report"`
	Receiver      ReceiverConfig      `mapstructure:"receiver"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
}
