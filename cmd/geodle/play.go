package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/geodle/geodle/cmd/geodle/shared"
	"github.com/geodle/geodle/internal/backoff"
	"github.com/geodle/geodle/internal/catalog"
	"github.com/geodle/geodle/internal/config"
	"github.com/geodle/geodle/internal/oracle"
	"github.com/geodle/geodle/internal/results"
	"github.com/geodle/geodle/internal/session"
)

// PlayCmd runs one interactive round against the oracle.
type PlayCmd struct {
	User      string `kong:"default='player',help='User ID for the round'"`
	Variant   string `kong:"default='countries',enum='countries,powiaty,wojewodztwa,us_states',help='Game variant to play'"`
	OracleURL string `kong:"help='Override the oracle endpoint URL'"`
	Seed      *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Debug     bool   `kong:"help='Enable debug logging'"`
}

func (c *PlayCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if c.Debug {
		level = "debug"
	}
	logger := shared.SetupLogger(level, cfg.Logging.Pretty)

	cat, err := catalog.Load()
	if err != nil {
		return err
	}

	store, err := results.NewSQLite(cfg.Results.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	emitter := results.NewEmitter(logger, store, backoff.Policy{
		Attempts:  cfg.Results.RetryAttempts,
		BaseDelay: 500 * time.Millisecond,
		Jitter:    0.2,
	}, nil)

	endpoint := cfg.Oracle.URL
	if c.OracleURL != "" {
		endpoint = c.OracleURL
	}

	var rng *rand.Rand
	if c.Seed != nil {
		logger.Info().Int64("seed", *c.Seed).Msg("using deterministic seed")
		rng = rand.New(rand.NewSource(*c.Seed))
	}

	gateway := oracle.NewGateway(logger, oracle.NewHTTPClient(logger, endpoint), cat, oracle.GatewayConfig{
		Timeout: cfg.OracleTimeout(),
		Retry: backoff.Policy{
			Attempts:  cfg.Oracle.RetryAttempts,
			BaseDelay: cfg.OracleBackoff(),
			Jitter:    0.2,
		},
	}, nil, rng)

	manager := session.NewManager(logger, cat, gateway, emitter, session.ManagerConfig{
		Defaults:      cfg.DefaultRules(),
		Variants:      cfg.VariantRules(),
		SweepInterval: cfg.SweepInterval(),
		Locale:        cfg.Session.Locale,
	}, nil, rng)

	ctx, cancel := context.WithCancel(shared.SetupSignalHandler(logger))
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return manager.Run(gctx) })
	g.Go(func() error { return emitter.Run(gctx) })

	playErr := c.playRound(gctx, manager, catalog.Variant(c.Variant))
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	return playErr
}

func (c *PlayCmd) playRound(ctx context.Context, m *session.Manager, variant catalog.Variant) error {
	view, err := m.Start(c.User, variant)
	if errors.Is(err, session.ErrConflict) {
		view, err = m.Get(c.User, variant)
		if err == nil {
			fmt.Printf("Resuming session %s (%d turns played).\n", view.SessionID, len(view.Turns))
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("New %s round. Ask yes/no questions about the secret entity.\n", variant)
	fmt.Println("Commands: /guess <name>, /state, /giveup, /quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Printf("[%d left] > ", view.TurnsRemaining)
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			return nil

		case line == "/state":
			printState(view)
			continue

		case line == "/giveup":
			final, err := m.Abandon(c.User, variant)
			if err != nil {
				return err
			}
			fmt.Printf("Round abandoned. The answer was %s.\n", final.EntityName)
			return nil

		case strings.HasPrefix(line, "/guess "):
			guess := strings.TrimSpace(strings.TrimPrefix(line, "/guess "))
			turn, v, err := m.SubmitGuess(ctx, c.User, variant, guess)
			view = v
			if err != nil {
				fmt.Printf("Guess could not be fully verified: %v\n", err)
			}
			switch v.Status {
			case session.StatusWon:
				fmt.Printf("Correct! %s it is. Score: %d points in %d turns.\n",
					v.EntityName, v.Score, len(v.Turns))
				return nil
			case session.StatusLost:
				fmt.Printf("Out of turns. The answer was %s.\n", v.EntityName)
				return nil
			default:
				fmt.Printf("%q is not it (%s).\n", guess, turn.GuessVerdict)
			}

		default:
			turn, v, err := m.SubmitQuestion(ctx, c.User, variant, line)
			if err != nil {
				switch {
				case errors.Is(err, session.ErrTurnBudget):
					fmt.Println("No question turns left; make a guess with /guess.")
				case errors.Is(err, oracle.ErrTimeout):
					fmt.Println("The oracle timed out; the turn was not used, try again.")
				case errors.Is(err, oracle.ErrUnavailable):
					fmt.Println("The oracle is unavailable; the turn was not used, try again later.")
				default:
					return err
				}
				continue
			}
			view = v
			fmt.Printf("%s\n", turn.Verdict)
		}
	}
}

func printState(v session.View) {
	fmt.Printf("Session %s (%s): %s, %d/%d turns used\n",
		v.SessionID, v.Variant, v.Status, len(v.Turns), v.MaxTurns)
	for _, t := range v.Turns {
		answer := string(t.Verdict)
		if t.Kind == session.TurnGuess {
			answer = string(t.GuessVerdict)
		}
		fmt.Printf("  %2d. [%s] %s -> %s\n", t.Index+1, t.Kind, t.Prompt, answer)
	}
}
