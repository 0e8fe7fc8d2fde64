package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bimakw/coin-portfolio/internal/application/services"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

func newApp(prices *services.PriceService, out io.Writer) *cli.App {
	currencyFlag := &cli.StringFlag{
		Name:    "currency",
		Aliases: []string{"c"},
		Value:   entities.DefaultCurrency,
		Usage:   "quote currency",
	}

	return &cli.App{
		Name:      "pricectl",
		Usage:     "query market data through the price cache",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:      "price",
				Usage:     "spot prices for one or more coins",
				ArgsUsage: "<coin-id>...",
				Flags:     []cli.Flag{currencyFlag},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("at least one coin id is required")
					}
					currency := entities.NormalizeCurrency(c.String("currency"))
					quotes := prices.GetPricesFor(c.Context, c.Args().Slice(), currency)

					tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
					fmt.Fprintf(tw, "COIN\tPRICE (%s)\n", currency)
					for _, id := range entities.NormalizeCoinIDs(c.Args().Slice()) {
						fmt.Fprintf(tw, "%s\t%g\n", id, quotes[id])
					}
					return tw.Flush()
				},
			},
			{
				Name:      "search",
				Usage:     "find coins by name or symbol",
				ArgsUsage: "<query>",
				Action: func(c *cli.Context) error {
					matches, err := prices.Search(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					return printMatches(out, matches)
				},
			},
			{
				Name:  "trending",
				Usage: "trending coins",
				Action: func(c *cli.Context) error {
					matches, err := prices.GetTrending(c.Context)
					if err != nil {
						return err
					}
					return printMatches(out, matches)
				},
			},
			{
				Name:  "global",
				Usage: "market-wide aggregates",
				Action: func(c *cli.Context) error {
					stats, err := prices.GetGlobalStats(c.Context)
					if err != nil {
						return err
					}
					return printJSON(out, stats)
				},
			},
			{
				Name:      "history",
				Usage:     "price history of a coin",
				ArgsUsage: "<coin-id>",
				Flags: []cli.Flag{
					currencyFlag,
					&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Value: 7, Usage: "days of history (1-365)"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("exactly one coin id is required")
					}
					points, err := prices.GetHistory(c.Context, c.Args().First(), c.String("currency"), c.Int("days"))
					if err != nil {
						return err
					}

					tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "TIME\tPRICE")
					for _, p := range points {
						fmt.Fprintf(tw, "%s\t%g\n", p.Timestamp.UTC().Format(time.RFC3339), p.Price)
					}
					return tw.Flush()
				},
			},
		},
	}
}

func printMatches(out io.Writer, matches []entities.CoinMatch) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSYMBOL\tNAME\tRANK")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", m.ID, m.Symbol, m.Name, m.MarketCapRank)
	}
	return tw.Flush()
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
