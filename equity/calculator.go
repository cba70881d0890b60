package equity

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"slices"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerequity/internal/randutil"
	"github.com/lox/pokerequity/poker"
)

const (
	// DefaultExhaustiveThreshold is the largest completion count enumerated under
	// StrategyAuto. Heads-up preflop (C(48,5) = 1,712,304) stays exhaustive.
	DefaultExhaustiveThreshold = 2_000_000
	// MaxExhaustiveThreshold caps WithExhaustiveThreshold.
	MaxExhaustiveThreshold = 50_000_000
	// DefaultIterations is the Monte Carlo sample count when a request names none.
	DefaultIterations = 100_000
	// MaxIterations is the largest sample count a request may ask for.
	MaxIterations = 10_000_000

	// BoardSize is the number of community cards at showdown.
	BoardSize = 5
	// HoleCards is the number of private cards per hand.
	HoleCards = 2

	maxDefaultWorkers = 8
	pollInterval      = 1 << 10
	progressInterval  = 1 << 14
)

// Request describes one equity calculation.
type Request struct {
	Hands [][]poker.Card
	Board []poker.Card
	Rules poker.Rules
	// Iterations is the Monte Carlo sample count; 0 selects the calculator default.
	// Ignored for exhaustive runs.
	Iterations int
	// Strategy overrides the calculator's strategy unless it is StrategyAuto.
	Strategy Strategy
	// Seed overrides the calculator's seed when non-zero.
	Seed int64
}

// Progress reports how many trials have been scored so far.
type Progress struct {
	Done  int64
	Total int64
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithExhaustiveThreshold sets the completion count above which StrategyAuto samples.
func WithExhaustiveThreshold(n uint64) Option {
	return func(c *Calculator) { c.threshold = n }
}

// WithDefaultIterations sets the sample count used when a request leaves it zero.
func WithDefaultIterations(n int) Option {
	return func(c *Calculator) { c.defaultIterations = n }
}

// WithMaxIterations sets the largest sample count a request may ask for.
func WithMaxIterations(n int) Option {
	return func(c *Calculator) { c.maxIterations = n }
}

// WithWorkers sets the number of goroutines that score trials.
func WithWorkers(n int) Option {
	return func(c *Calculator) { c.workers = n }
}

// WithSeed fixes the Monte Carlo seed. Results are reproducible for a given seed and
// worker count.
func WithSeed(seed int64) Option {
	return func(c *Calculator) {
		c.seed = seed
		c.seeded = true
	}
}

// WithStrategy forces a strategy for every request that does not name one.
func WithStrategy(s Strategy) Option {
	return func(c *Calculator) { c.strategy = s }
}

// WithClock sets the clock used to time calculations.
func WithClock(clock quartz.Clock) Option {
	return func(c *Calculator) { c.clock = clock }
}

// WithLogger sets the logger for calculation diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Calculator) { c.logger = logger }
}

// WithProgress registers a callback invoked periodically while trials run. Calls are
// serialised; the callback must not block for long.
func WithProgress(fn func(Progress)) Option {
	return func(c *Calculator) { c.progress = fn }
}

// Calculator computes showdown equity. It holds configuration only, so one
// Calculator may serve concurrent calls.
type Calculator struct {
	threshold         uint64
	defaultIterations int
	maxIterations     int
	workers           int
	seed              int64
	seeded            bool
	strategy          Strategy
	clock             quartz.Clock
	logger            zerolog.Logger
	progress          func(Progress)
}

// NewCalculator returns a calculator with the given options applied over the defaults.
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{
		threshold:         DefaultExhaustiveThreshold,
		defaultIterations: DefaultIterations,
		maxIterations:     MaxIterations,
		workers:           min(runtime.NumCPU(), maxDefaultWorkers),
		clock:             quartz.NewReal(),
		logger:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.threshold > MaxExhaustiveThreshold:
		return nil, fmt.Errorf("%w: exhaustive threshold %d exceeds %d", poker.ErrInvalidIterations, c.threshold, MaxExhaustiveThreshold)
	case c.maxIterations < 1:
		return nil, fmt.Errorf("%w: max iterations %d must be positive", poker.ErrInvalidIterations, c.maxIterations)
	case c.defaultIterations < 1 || c.defaultIterations > c.maxIterations:
		return nil, fmt.Errorf("%w: default iterations %d outside [1, %d]", poker.ErrInvalidIterations, c.defaultIterations, c.maxIterations)
	case c.workers < 1:
		return nil, fmt.Errorf("workers must be positive, got %d", c.workers)
	}
	return c, nil
}

// Calculate scores every hand in req against the others over all board completions
// (or a uniform sample of them). If ctx is cancelled mid-run the trials completed so
// far are returned with Partial set and a nil error.
func (c *Calculator) Calculate(ctx context.Context, req Request) (*Result, error) {
	if err := c.Validate(req); err != nil {
		return nil, err
	}

	start := c.clock.Now()
	deck, err := poker.NewDeck(req.Rules, append(slices.Clone(req.Hands), req.Board)...)
	if err != nil {
		return nil, err
	}
	k := BoardSize - len(req.Board)
	if deck.Len() < k {
		return nil, fmt.Errorf("%w: %d hands leave %d cards, board needs %d",
			poker.ErrInvalidHandCount, len(req.Hands), deck.Len(), k)
	}

	requested := req.Strategy
	if requested == StrategyAuto {
		requested = c.strategy
	}
	combos := Combinations(deck.Len(), k)
	strategy := ChooseStrategy(requested, combos, c.threshold)

	seed := c.seed
	switch {
	case req.Seed != 0:
		seed = req.Seed
	case !c.seeded:
		seed = randutil.NewSeed()
	}

	calc := &calculation{
		rules:    req.Rules,
		board:    poker.NewHand(req.Board...),
		holes:    make([]poker.Hand, len(req.Hands)),
		progress: c.progress,
	}
	for i, h := range req.Hands {
		calc.holes[i] = poker.NewHand(h...)
	}

	cards := deck.Cards()
	var merged *tally
	switch strategy {
	case StrategyExhaustive:
		calc.total = int64(combos)
		merged = c.runExhaustive(ctx, calc, cards, k)
	default:
		iterations := req.Iterations
		if iterations == 0 {
			iterations = c.defaultIterations
		}
		calc.total = int64(iterations)
		merged = c.runMonteCarlo(ctx, calc, cards, k, iterations, seed)
	}

	result := newResult(req, strategy, merged, calc.total)
	result.Combinations = combos
	result.Elapsed = c.clock.Since(start)
	if strategy == StrategyMonteCarlo {
		result.Seed = seed
	}

	c.logger.Debug().
		Str("id", result.ID.String()).
		Str("rules", req.Rules.String()).
		Str("strategy", strategy.String()).
		Int("players", len(req.Hands)).
		Int64("trials", result.Iterations).
		Bool("partial", result.Partial).
		Dur("elapsed", result.Elapsed).
		Msg("Equity calculated")

	return result, nil
}

// Validate checks req the way Calculate does without running it. Callers that
// answer requests from elsewhere, such as a cache, use it to reject bad input first.
func (c *Calculator) Validate(req Request) error {
	if len(req.Hands) < 2 {
		return fmt.Errorf("%w: need at least 2 hands, got %d", poker.ErrInvalidHandCount, len(req.Hands))
	}
	for i, h := range req.Hands {
		if len(h) != HoleCards {
			return fmt.Errorf("%w: hand %d has %d cards, want %d", poker.ErrInvalidHoleCards, i+1, len(h), HoleCards)
		}
	}
	if len(req.Board) > BoardSize {
		return fmt.Errorf("%w: board has %d cards, want 0-%d", poker.ErrInvalidBoardSize, len(req.Board), BoardSize)
	}
	for _, set := range append(slices.Clone(req.Hands), req.Board) {
		for _, card := range set {
			if !req.Rules.Contains(card) {
				return fmt.Errorf("%w: %s is not dealt in %s", poker.ErrCardNotInVariant, card, req.Rules)
			}
		}
	}
	if dup, ok := poker.FirstDuplicate(append(slices.Clone(req.Hands), req.Board)...); ok {
		return fmt.Errorf("%w: %s", poker.ErrDuplicateCard, dup)
	}
	if req.Iterations < 0 || req.Iterations > c.maxIterations {
		return fmt.Errorf("%w: %d outside [0, %d]", poker.ErrInvalidIterations, req.Iterations, c.maxIterations)
	}
	return nil
}

// runExhaustive hands first-card shards to workers through a channel so that the
// large low-index shards do not leave workers idle.
func (c *Calculator) runExhaustive(ctx context.Context, r *calculation, cards []poker.Card, k int) *tally {
	shards := shardCount(len(cards), k)
	workers := max(min(c.workers, shards), 1)

	jobs := make(chan int)
	tallies := make([]*tally, workers)
	var g errgroup.Group

	g.Go(func() error {
		defer close(jobs)
		for first := range shards {
			select {
			case jobs <- first:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	for w := range workers {
		t := newTally(len(r.holes))
		tallies[w] = t
		g.Go(func() error {
			for first := range jobs {
				if !r.consume(ctx, t, exhaustiveShard(cards, k, first)) {
					return nil
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	return mergeTallies(len(r.holes), tallies)
}

// runMonteCarlo splits the sample count evenly; worker w draws from
// randutil.Derive(seed, w).
func (c *Calculator) runMonteCarlo(ctx context.Context, r *calculation, cards []poker.Card, k, iterations int, seed int64) *tally {
	workers := max(min(c.workers, iterations), 1)
	per, remainder := iterations/workers, iterations%workers

	tallies := make([]*tally, workers)
	var g errgroup.Group
	for w := range workers {
		samples := per
		if w < remainder {
			samples++
		}
		t := newTally(len(r.holes))
		tallies[w] = t
		g.Go(func() error {
			r.consume(ctx, t, Sample(cards, k, samples, randutil.Derive(seed, w)))
			return nil
		})
	}

	_ = g.Wait()
	return mergeTallies(len(r.holes), tallies)
}

func mergeTallies(players int, tallies []*tally) *tally {
	merged := newTally(players)
	for _, t := range tallies {
		merged.merge(t)
	}
	return merged
}

// calculation is the immutable per-calculation state shared by workers, plus the progress
// counter.
type calculation struct {
	rules poker.Rules
	board poker.Hand
	holes []poker.Hand
	total int64

	progress func(Progress)
	mu       sync.Mutex
	done     int64
}

// consume scores every completion from seq into t. It returns false if ctx was
// cancelled before seq was exhausted.
func (r *calculation) consume(ctx context.Context, t *tally, seq iter.Seq[poker.Hand]) bool {
	ranks := make([]poker.HandRank, len(r.holes))
	var sinceReport int64
	for completion := range seq {
		for i, hole := range r.holes {
			ranks[i] = poker.EvaluateHand(r.rules, hole|r.board|completion)
		}
		t.record(ranks)

		sinceReport++
		if sinceReport == progressInterval {
			r.report(sinceReport)
			sinceReport = 0
		}
		if t.trials%pollInterval == 0 && ctx.Err() != nil {
			r.report(sinceReport)
			return false
		}
	}
	r.report(sinceReport)
	return true
}

func (r *calculation) report(n int64) {
	if r.progress == nil || n == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done += n
	r.progress(Progress{Done: r.done, Total: r.total})
}
