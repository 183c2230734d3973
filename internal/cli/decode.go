package cli

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/format"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/decoder"
	"github.com/urfave/cli/v2"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "decode OTLP protobuf payloads and print them",
		ArgsUsage: "[file|-]...",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Value:   decoder.MessageTypeExportTraceServiceRequest.String(),
				Usage:   "message type of the payload, see --list",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "list the supported message types",
			},
		}, append(payloadFlags(), modeFlags()...)...),
		Action: runDecode,
	}
}

func runDecode(c *cli.Context) error {
	if c.Bool("list") {
		for _, t := range decoder.MessageTypes() {
			fmt.Fprintln(c.App.Writer, t)
		}
		return nil
	}

	s := fromContext(c)
	messageType, err := decoder.ParseMessageType(c.String("name"))
	if err != nil {
		return err
	}
	mode, err := outputMode(c)
	if err != nil {
		return err
	}
	dec, err := s.decoder()
	if err != nil {
		return err
	}

	return runPayloads(c, s, mode == format.ModePretty, func(payload []byte) (string, string, error) {
		v, err := dec.Decode(messageType, payload)
		if err != nil {
			return "", "", err
		}
		text, err := format.Any(v, mode)
		return text, "", err
	})
}
