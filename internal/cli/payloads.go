package cli

import (
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"io"
	goruntime "runtime"
)

// renderFunc decodes one payload and renders it. note, when set, is printed
// to stderr after the rendered text.
type renderFunc func(payload []byte) (text string, note string, err error)

type rendered struct {
	label string
	text  string
	note  string
	err   error
}

func payloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "base64",
			Usage: "input holds one base64 payload per line, decoded independently",
		},
		&cli.StringFlag{
			Name:  "dump-dir",
			Value: ".",
			Usage: "where base64 payloads that fail to decode are written as otk.<id>.bin",
		},
	}
}

// runPayloads renders every payload named by the command's arguments. Plain
// files are decoded in parallel and printed in argument order; base64 input
// is streamed line by line. A failing payload does not stop the others.
func runPayloads(c *cli.Context, s *session, pretty bool, render renderFunc) error {
	srcs := sources(c.Args().Slice(), c.App.Reader)
	failures := 0

	emit := func(r rendered, withLabel bool) {
		if r.err != nil {
			failures++
			fmt.Fprintf(c.App.ErrWriter, "%s %s: %v\n", red("error:"), r.label, r.err)
			return
		}
		if pretty && withLabel && r.text != "" {
			fmt.Fprintf(c.App.Writer, "# %s\n", r.label)
		}
		io.WriteString(c.App.Writer, r.text)
		if r.note != "" {
			fmt.Fprintln(c.App.ErrWriter, r.note)
		}
	}

	if c.Bool("base64") {
		dumpDir := c.String("dump-dir")
		for _, src := range srcs {
			reader, err := src.open()
			if err != nil {
				return err
			}
			err = eachBase64Line(reader, func(n int, raw, data []byte, decodeErr error) error {
				r := rendered{label: fmt.Sprintf("%s line %d", src.name, n), err: decodeErr}
				if decodeErr == nil {
					r.text, r.note, r.err = render(data)
				}
				emit(r, true)
				if r.err != nil {
					payload := data
					if payload == nil {
						payload = raw
					}
					path, err := dumpPayload(dumpDir, payload)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.ErrWriter, "%s payload dumped to %s\n", yellow("note:"), path)
				}
				return nil
			})
			reader.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", src.name, err)
			}
		}
	} else {
		results := make([]rendered, len(srcs))
		var g errgroup.Group
		g.SetLimit(goruntime.NumCPU())
		for i, src := range srcs {
			g.Go(func() error {
				results[i].label = src.name
				data, err := src.readAll()
				if err != nil {
					results[i].err = err
					return nil
				}
				s.logger.Debug("Read payload",
					zap.String("source", src.name),
					zap.String("size", humanize.Bytes(uint64(len(data)))),
				)
				results[i].text, results[i].note, results[i].err = render(data)
				return nil
			})
		}
		_ = g.Wait()
		for _, r := range results {
			emit(r, len(srcs) > 1)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d payload(s) failed to decode", failures)
	}
	return nil
}
