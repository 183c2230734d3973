package cli

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/internal/config"
	"github.com/Frefreak/otlp-toolkit/internal/logging"
	"github.com/Frefreak/otlp-toolkit/pkg/format"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/decoder"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var red = color.New(color.FgRed).SprintFunc()
var yellow = color.New(color.FgYellow).SprintFunc()

const sessionKey = "otk.session"

// session is built once per invocation by the app's Before hook.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewApp() *cli.App {
	return &cli.App{
		Name:  "otk",
		Usage: "decode, search, send and receive OTLP telemetry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file (also OTK_CONFIG_FILE)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error; overrides log.level",
			},
			&cli.BoolFlag{
				Name:  "log-dev",
				Usage: "human readable development logs",
			},
		},
		Before: setup,
		After: func(c *cli.Context) error {
			if s, ok := c.App.Metadata[sessionKey].(*session); ok {
				_ = s.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			decodeCommand(),
			searchCommand(),
			reportTraceCommand(),
			reportMetricCommand(),
			reportLogCommand(),
			receiveCommand(),
			consumeKafkaCommand(),
		},
	}
}

func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-dev") {
		cfg.Log.Development = c.Bool("log-dev")
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[sessionKey] = &session{cfg: cfg, logger: logger}
	return nil
}

func fromContext(c *cli.Context) *session {
	if s, ok := c.App.Metadata[sessionKey].(*session); ok {
		return s
	}
	return &session{cfg: &config.Config{}, logger: zap.NewNop()}
}

func (s *session) decoder() (*decoder.Decoder, error) {
	policy, err := decoder.ParseIDPolicy(s.cfg.Decode.IDPolicy)
	if err != nil {
		return nil, err
	}
	opts := []decoder.Option{decoder.WithIDPolicy(policy)}
	if s.cfg.Decode.MaxDepth > 0 {
		opts = append(opts, decoder.WithMaxDepth(s.cfg.Decode.MaxDepth))
	}
	if s.cfg.Decode.MaxNodes > 0 {
		opts = append(opts, decoder.WithMaxNodes(s.cfg.Decode.MaxNodes))
	}
	return decoder.NewDecoder(opts...), nil
}

func modeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "pretty", Usage: "indented tree output (default)"},
		&cli.BoolFlag{Name: "compact", Usage: "one line per span, data point or record"},
	}
}

func outputMode(c *cli.Context) (format.Mode, error) {
	if c.Bool("pretty") && c.Bool("compact") {
		return format.ModePretty, fmt.Errorf("--pretty and --compact are mutually exclusive")
	}
	if c.Bool("compact") {
		return format.ModeCompact, nil
	}
	return format.ModePretty, nil
}
