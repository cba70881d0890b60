package main

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pokerequity/equity"
	"github.com/lox/pokerequity/poker"
)

type CLI struct {
	Hands         []string `arg:"" help:"Player hands, e.g. 'AcKh QsJd' (one argument per hand)" required:"true"`
	Board         string   `short:"b" help:"Community board cards (e.g., 'Td7s8h')"`
	Variant       string   `short:"v" help:"Rules variant: standard or short-deck" default:"standard"`
	Possibilities bool     `short:"p" help:"Show detailed hand type probabilities"`
	Iterations    int      `short:"i" help:"Number of Monte Carlo iterations (0 uses the engine default)" default:"0"`
	Strategy      string   `short:"s" help:"auto, exhaustive or monte-carlo" default:"auto" enum:"auto,exhaustive,monte-carlo"`
	Workers       int      `short:"w" help:"Worker goroutines (0 uses the engine default)" default:"0"`
	Seed          *int64   `help:"Random seed for reproducible results"`
	JSON          bool     `help:"Print the full result as JSON"`
	Verbose       bool     `help:"Log calculation progress to stderr"`
}

var (
	// Style definitions
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	equityStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("poker-odds"),
		kong.Description("Calculate showdown equity between hold'em hands."),
	)

	level := log.WarnLevel
	if cli.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level, Prefix: "poker-odds"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cli, os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		kctx.Exit(1)
	}
}

// run calculates and prints equity. An interrupt stops the calculation early and
// prints what was gathered so far.
func run(ctx context.Context, cli CLI, out io.Writer, logger *log.Logger) error {
	req, err := equity.ParseRequest(normalizeHands(cli.Hands), cli.Board, cli.Variant, cli.Iterations)
	if err != nil {
		return err
	}
	if req.Strategy, err = equity.ParseStrategy(cli.Strategy); err != nil {
		return err
	}

	opts := []equity.Option{
		equity.WithProgress(func(p equity.Progress) {
			logger.Debug("progress", "done", p.Done, "total", p.Total)
		}),
	}
	if cli.Workers > 0 {
		opts = append(opts, equity.WithWorkers(cli.Workers))
	}
	if cli.Seed != nil {
		opts = append(opts, equity.WithSeed(*cli.Seed))
	}
	calc, err := equity.NewCalculator(opts...)
	if err != nil {
		return err
	}

	logger.Debug("calculating", "hands", len(req.Hands), "board", poker.FormatCards(req.Board), "variant", req.Rules)
	result, err := calc.Calculate(ctx, req)
	if err != nil {
		return err
	}
	logger.Debug("done", "strategy", result.Strategy, "trials", result.Iterations, "elapsed", result.Elapsed)

	if cli.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	displayResults(out, result, cli.Possibilities)
	return nil
}

// normalizeHands accepts hands either as separate arguments or as one quoted
// argument holding several space-separated hands.
func normalizeHands(args []string) []string {
	var hands []string
	for _, arg := range args {
		fields := strings.Fields(arg)
		if len(fields) > 1 && len(strings.Join(fields, "")) > 2*equity.HoleCards {
			hands = append(hands, fields...)
			continue
		}
		hands = append(hands, arg)
	}
	return hands
}

func displayResults(out io.Writer, result *equity.Result, showPossibilities bool) {
	if len(result.Board) > 0 {
		fmt.Fprintf(out, "%s\n", headerStyle.Render("board"))
		fmt.Fprintf(out, "%s\n\n", formatCards(result.Board))
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("hand"),
		headerStyle.Render("class"),
		headerStyle.Render("equity"),
		headerStyle.Render("win"),
		headerStyle.Render("tie"))

	for _, p := range result.Players {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			handStyle.Render(formatCards(p.Hand)),
			categoryStyle.Render(fmt.Sprintf("%s %s", p.Label, p.Category)),
			equityStyle.Render(percent(p.Equity)),
			winStyle.Render(percent(p.WinPercentage)),
			tieStyle.Render(percent(p.TiePercentage)))
	}

	w.Flush()

	if showPossibilities && len(result.Players) > 0 {
		fmt.Fprintf(out, "\n")
		displayPossibilities(out, result)
	}

	fmt.Fprintf(out, "\n")
	if result.Partial {
		fmt.Fprintf(out, "%s\n", warnStyle.Render(fmt.Sprintf("interrupted after %d of %d trials", result.Iterations, result.Planned)))
	}
	fmt.Fprintf(out, "%d %s trials (%s) in %v\n",
		result.Iterations, result.Strategy, result.Rules, result.Elapsed.Truncate(time.Millisecond))
}

func displayPossibilities(out io.Writer, result *equity.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s", categoryStyle.Render("hand"))
	for _, p := range result.Players {
		fmt.Fprintf(w, "\t%s", handStyle.Render(formatCards(p.Hand)))
	}
	fmt.Fprintf(w, "\n")

	// Strongest category first under the result's rules.
	categories := make([]poker.Category, 0, poker.NumCategories)
	for c := range poker.Category(poker.NumCategories) {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b poker.Category) int {
		return cmp.Compare(result.Rules.CategoryOrdinal(b), result.Rules.CategoryOrdinal(a))
	})

	for _, category := range categories {
		seen := false
		for _, p := range result.Players {
			if p.Categories[category] > 0 {
				seen = true
				break
			}
		}
		if !seen {
			continue
		}

		fmt.Fprintf(w, "%s", categoryStyle.Render(category.String()))
		for _, p := range result.Players {
			if pct := p.Categories[category]; pct > 0 {
				fmt.Fprintf(w, "\t%s", percentStyle.Render(percent(pct)))
			} else {
				fmt.Fprintf(w, "\t%s", percentStyle.Render("."))
			}
		}
		fmt.Fprintf(w, "\n")
	}

	w.Flush()
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

func formatCards(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = card.String()
	}
	return strings.Join(parts, " ")
}
