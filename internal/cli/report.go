package cli

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/keyvalue"
	"github.com/Frefreak/otlp-toolkit/pkg/report"
	"github.com/urfave/cli/v2"
	"strconv"
	"time"
)

func endpointFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "protocol",
			Aliases: []string{"p"},
			Usage:   "grpc (g) or http (h); defaults to report.protocol",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "collector host; defaults to report.host (OTK_REPORT_HOST)",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "collector port; defaults to report.port (OTK_REPORT_PORT), then 4317 for grpc or 4318 for http",
		},
		&cli.BoolFlag{
			Name:  "tls",
			Usage: "connect with TLS",
		},
		&cli.StringFlag{
			Name:  "ca-cert",
			Usage: "PEM file of the CA that signed the collector certificate (needs --tls)",
		},
		&cli.StringFlag{
			Name:  "domain",
			Usage: "server name expected in the collector certificate (needs --tls)",
		},
		&cli.StringSliceFlag{
			Name:  "metadata",
			Usage: "gRPC metadata k=v, repeatable",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "export timeout in seconds; defaults to report.timeout",
		},
		&cli.StringSliceFlag{
			Name:  "rtags",
			Usage: "resource attribute k=v, repeatable",
		},
		&cli.StringSliceFlag{
			Name:  "attrs",
			Usage: "attribute k=v, repeatable",
		},
	}
}

func endpoint(c *cli.Context, s *session) (report.Endpoint, error) {
	protocolName := s.cfg.Report.Protocol
	if c.IsSet("protocol") {
		protocolName = c.String("protocol")
	}
	protocol, err := report.ParseProtocol(protocolName)
	if err != nil {
		return report.Endpoint{}, err
	}
	metadata, err := keyvalue.ParseAll(c.StringSlice("metadata"))
	if err != nil {
		return report.Endpoint{}, fmt.Errorf("--metadata: %w", err)
	}

	e := report.Endpoint{
		Protocol: protocol,
		Host:     s.cfg.Report.Host,
		Port:     s.cfg.Report.Port,
		TLS:      c.Bool("tls"),
		CACert:   c.String("ca-cert"),
		Domain:   c.String("domain"),
		Metadata: metadata,
		Timeout:  s.cfg.Report.Timeout,
	}
	if c.IsSet("host") {
		e.Host = c.String("host")
	}
	if c.IsSet("port") {
		e.Port = c.Int("port")
	}
	if c.IsSet("timeout") {
		e.Timeout = time.Duration(c.Int("timeout")) * time.Second
	}
	return e, e.Validate()
}

func tags(c *cli.Context) (resourceTags, attributes []report.KeyValue, err error) {
	if resourceTags, err = keyvalue.ParseAll(c.StringSlice("rtags")); err != nil {
		return nil, nil, fmt.Errorf("--rtags: %w", err)
	}
	if attributes, err = keyvalue.ParseAll(c.StringSlice("attrs")); err != nil {
		return nil, nil, fmt.Errorf("--attrs: %w", err)
	}
	return resourceTags, attributes, nil
}

func reportTraceCommand() *cli.Command {
	return &cli.Command{
		Name:  "report-trace",
		Usage: "send synthetic spans to an OTLP endpoint",
		Flags: append(endpointFlags(),
			&cli.StringFlag{
				Name:  "name",
				Value: report.DefaultSpanName,
				Usage: "span name",
			},
			&cli.StringFlag{
				Name:  "long-length-tag",
				Usage: `k=n adds attribute "ll" holding k repeated n times`,
			},
			&cli.StringFlag{
				Name:  "status-msg",
				Usage: "mark spans as errors with this message",
			},
			&cli.IntFlag{
				Name:  "duration",
				Usage: "span duration in milliseconds",
			},
			&cli.IntFlag{
				Name:  "batch",
				Value: 1,
				Usage: "number of spans",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "spans per second, 0 for unlimited",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print the trace id of every span",
			},
		),
		Action: func(c *cli.Context) error {
			s := fromContext(c)
			e, err := endpoint(c, s)
			if err != nil {
				return err
			}
			resourceTags, attributes, err := tags(c)
			if err != nil {
				return err
			}
			opts := report.TraceOptions{
				Endpoint:      e,
				ResourceTags:  resourceTags,
				Name:          c.String("name"),
				Attributes:    attributes,
				StatusMessage: c.String("status-msg"),
				Duration:      time.Duration(c.Int("duration")) * time.Millisecond,
				Batch:         c.Int("batch"),
				Rate:          c.Float64("rate"),
			}
			if raw := c.String("long-length-tag"); raw != "" {
				kv, err := keyvalue.Parse(raw)
				if err != nil {
					return fmt.Errorf("--long-length-tag: %w", err)
				}
				opts.LongLengthTag = &kv
			}

			traceIDs, err := report.NewReporterImpl(s.logger).ReportTraces(c.Context, opts)
			if err != nil {
				return err
			}
			if c.Bool("verbose") {
				for _, id := range traceIDs {
					fmt.Fprintln(c.App.Writer, id)
				}
			}
			fmt.Fprintf(c.App.ErrWriter, "sent %d span(s) to %s\n", len(traceIDs), e.Address())
			return nil
		},
	}
}

func reportMetricCommand() *cli.Command {
	return &cli.Command{
		Name:  "report-metric",
		Usage: "send synthetic metric measurements to an OTLP endpoint",
		Flags: append(endpointFlags(),
			&cli.StringFlag{
				Name:  "dtype",
				Value: "i64",
				Usage: "i64 or f64",
			},
			&cli.StringFlag{
				Name:  "mtype",
				Value: "counter",
				Usage: "counter, updown, histogram or gauge",
			},
			&cli.StringFlag{
				Name:  "name",
				Value: report.DefaultMetricName,
				Usage: "metric name",
			},
			&cli.StringSliceFlag{
				Name:  "value",
				Value: cli.NewStringSlice("1"),
				Usage: "measurement, repeatable; negatives allowed except for counters",
			},
			&cli.IntFlag{
				Name:  "times",
				Value: 1,
				Usage: "how many times the values are recorded",
			},
			&cli.IntFlag{
				Name:  "wait-secs",
				Value: 1,
				Usage: "seconds to keep exporting after the last measurement",
			},
			&cli.StringFlag{
				Name:  "library-name",
				Value: report.InstrumentationName,
				Usage: "instrumentation scope name",
			},
			&cli.StringSliceFlag{
				Name:  "bucket",
				Usage: "explicit histogram bucket boundary, repeatable",
			},
		),
		Action: func(c *cli.Context) error {
			s := fromContext(c)
			e, err := endpoint(c, s)
			if err != nil {
				return err
			}
			resourceTags, attributes, err := tags(c)
			if err != nil {
				return err
			}
			dataType, err := report.ParseDataType(c.String("dtype"))
			if err != nil {
				return err
			}
			kind, err := report.ParseInstrumentKind(c.String("mtype"))
			if err != nil {
				return err
			}
			var buckets []float64
			for _, raw := range c.StringSlice("bucket") {
				b, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return fmt.Errorf("--bucket %q: %w", raw, err)
				}
				buckets = append(buckets, b)
			}

			recorded, err := report.NewReporterImpl(s.logger).ReportMetrics(c.Context, report.MetricOptions{
				Endpoint:     e,
				ResourceTags: resourceTags,
				LibraryName:  c.String("library-name"),
				DataType:     dataType,
				Kind:         kind,
				Name:         c.String("name"),
				Values:       c.StringSlice("value"),
				Times:        c.Int("times"),
				Attributes:   attributes,
				Buckets:      buckets,
				Wait:         time.Duration(c.Int("wait-secs")) * time.Second,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.ErrWriter, "recorded %d measurement(s) to %s\n", recorded, e.Address())
			return nil
		},
	}
}

func reportLogCommand() *cli.Command {
	return &cli.Command{
		Name:  "report-log",
		Usage: "send synthetic log records to an OTLP endpoint",
		Flags: append(endpointFlags(),
			&cli.StringFlag{
				Name:  "body",
				Value: "otk test log",
				Usage: "log body",
			},
			&cli.StringFlag{
				Name:  "severity",
				Value: report.DefaultSeverity,
				Usage: "severity text; known names such as WARN also set the number",
			},
			&cli.IntFlag{
				Name:  "batch",
				Value: 1,
				Usage: "number of records",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "records per second, 0 for unlimited",
			},
		),
		Action: func(c *cli.Context) error {
			s := fromContext(c)
			e, err := endpoint(c, s)
			if err != nil {
				return err
			}
			resourceTags, attributes, err := tags(c)
			if err != nil {
				return err
			}
			sent, err := report.NewReporterImpl(s.logger).ReportLogs(c.Context, report.LogOptions{
				Endpoint:     e,
				ResourceTags: resourceTags,
				Body:         c.String("body"),
				Severity:     c.String("severity"),
				Attributes:   attributes,
				Batch:        c.Int("batch"),
				Rate:         c.Float64("rate"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.ErrWriter, "sent %d log record(s) to %s\n", sent, e.Address())
			return nil
		},
	}
}
