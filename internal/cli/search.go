package cli

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/format"
	"github.com/Frefreak/otlp-toolkit/pkg/keyvalue"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/search"
	"github.com/urfave/cli/v2"
	"slices"
	"strconv"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "print the spans of trace export payloads that match a query",
		ArgsUsage: "[file|-]...",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   `query expression, e.g. 'name == "GET /" and duration > 100ms'`,
			},
			&cli.StringFlag{
				Name:    "trace-id",
				Aliases: []string{"t"},
				Usage:   "only spans of this trace (hex)",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "only spans with this name",
			},
			&cli.StringSliceFlag{
				Name:  "attr",
				Usage: "only spans whose attribute k equals v (k=v, repeatable)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "report the number of matches per payload on stderr",
			},
		}, append(payloadFlags(), modeFlags()...)...),
		Action: runSearch,
	}
}

// searchPredicate combines the query and the shorthand flags with and.
func searchPredicate(c *cli.Context) (search.Predicate, error) {
	var parts []search.Predicate
	if q := c.String("query"); q != "" {
		p, err := search.Parse(q)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	if id := c.String("trace-id"); id != "" {
		p, err := search.NewLeaf("span.trace_id", search.OpEq, model.StringValue(id))
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	if name := c.String("name"); name != "" {
		p, err := search.NewLeaf("span.name", search.OpEq, model.StringValue(name))
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	attrs, err := keyvalue.ParseAll(c.StringSlice("attr"))
	if err != nil {
		return nil, err
	}
	for _, kv := range attrs {
		p, err := search.NewLeaf("attribute["+strconv.Quote(kv.Key)+"]", search.OpEq, search.InferLiteral(kv.Value))
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return search.And(parts...), nil
}

func runSearch(c *cli.Context) error {
	s := fromContext(c)
	predicate, err := searchPredicate(c)
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
	verbose := c.Bool("verbose")

	return runPayloads(c, s, mode == format.ModePretty, func(payload []byte) (string, string, error) {
		tree, err := dec.DecodeTraces(payload)
		if err != nil {
			return "", "", err
		}
		matches := slices.Collect(search.Search(tree, predicate))
		var note string
		if verbose {
			note = fmt.Sprintf("%d of %d span(s) matched %s", len(matches), tree.SpanCount(), predicate)
		}
		return format.Matches(slices.Values(matches), mode), note, nil
	})
}
