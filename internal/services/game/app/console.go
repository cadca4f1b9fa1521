package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/message"

	apperrors "github.com/louisbranch/atlas/internal/platform/errors"
	errori18n "github.com/louisbranch/atlas/internal/platform/errors/i18n"
	i18ncatalog "github.com/louisbranch/atlas/internal/platform/i18n/catalog"
	"github.com/louisbranch/atlas/internal/services/game/domain/journal"
	"github.com/louisbranch/atlas/internal/services/game/domain/match"
	"github.com/louisbranch/atlas/internal/services/game/domain/player"
)

const tracerName = "github.com/louisbranch/atlas/internal/services/game/app"

// Main menu and save prompt choices.
const (
	choiceStart = "1"
	choiceQuit  = "2"
	choiceLoad  = "3"

	choiceYes = "1"
	choiceNo  = "2"
)

// In-game commands; any other input is an answer.
const (
	commandQuit   = "quit"
	commandStatus = "status"
	commandRename = "rename"
	commandAdd    = "add"
)

// ConsoleConfig configures a Console.
type ConsoleConfig struct {
	Locale     string
	Dictionary []string
	// PrintLog prints the journal when the console exits.
	PrintLog bool
	Logger   *log.Logger
	Tracer   trace.Tracer
}

// Console drives a session over line-oriented text streams.
type Console struct {
	session    *Session
	in         *bufio.Scanner
	out        io.Writer
	locale     string
	printer    *message.Printer
	dictionary []string
	printLog   bool
	logger     *log.Logger
	tracer     trace.Tracer
}

// NewConsole creates a console reading from in and writing to out.
func NewConsole(session *Session, in io.Reader, out io.Writer, cfg ConsoleConfig) *Console {
	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = i18ncatalog.BaseLocale
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Console{
		session:    session,
		in:         bufio.NewScanner(in),
		out:        out,
		locale:     locale,
		printer:    i18ncatalog.Default().Printer(locale),
		dictionary: cfg.Dictionary,
		printLog:   cfg.PrintLog,
		logger:     logger,
		tracer:     tracer,
	}
}

// Run shows the main menu until the player quits or input ends. It returns
// the context error if ctx is canceled between prompts.
func (c *Console) Run(ctx context.Context) error {
	defer c.exit()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.say("game.menu.start")
		c.say("game.menu.quit")
		c.say("game.menu.load")
		choice, ok := c.read()
		if !ok {
			return c.inputErr()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		switch choice {
		case choiceStart:
			if !c.setup() {
				return c.inputErr()
			}
		case choiceQuit:
			c.say("game.menu.goodbye")
			return nil
		case choiceLoad:
			loaded, err := c.session.Load(ctx, c.dictionary)
			if err != nil {
				c.fail(err)
				continue
			}
			if !loaded {
				c.say("game.load.none")
				continue
			}
			c.say("game.load.done")
		default:
			c.say("game.menu.invalid")
			continue
		}

		more, err := c.play(ctx)
		if err != nil {
			return err
		}
		if !more {
			return c.inputErr()
		}
	}
}

// setup collects the roster and starts a match. It returns false when input
// runs out.
func (c *Console) setup() bool {
	engine := c.session.Engine()
	engine.Reset()
	rules := engine.Rules()

	var count int
	for {
		c.say("game.setup.count", rules.MinPlayers, rules.MaxPlayers)
		line, ok := c.read()
		if !ok {
			return false
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= rules.MinPlayers && n <= rules.MaxPlayers {
			count = n
			break
		}
		c.say("game.menu.invalid")
	}

	for i := 1; i <= count; {
		c.say("game.setup.name", i)
		name, ok := c.read()
		if !ok {
			return false
		}
		if err := engine.AddPlayer(name); err != nil {
			c.fail(err)
			continue
		}
		i++
	}

	if _, err := engine.StartNewMatch(nil, c.dictionary); err != nil {
		c.fail(err)
		engine.Reset()
	}
	return true
}

// play runs turns until the match ends or the player quits. It returns false
// when input runs out and the context error once ctx is canceled.
func (c *Console) play(ctx context.Context) (bool, error) {
	engine := c.session.Engine()
	if engine.Status() != match.StatusInProgress {
		return true, nil
	}
	c.say("game.turn.begin")

	for engine.Status() == match.StatusInProgress {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		c.say("game.turn.letter", string(engine.CurrentLetter()))
		c.say("game.turn.player", engine.ActivePlayer())
		c.say("game.turn.help")
		c.say("game.turn.prompt")
		line, ok := c.read()
		if !ok {
			return false, nil
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}

		switch strings.ToLower(line) {
		case commandQuit:
			engine.Abort()
			return c.offerSave(ctx), nil
		case commandStatus:
			c.status()
		case commandRename:
			if !c.rename() {
				return false, nil
			}
		case commandAdd:
			if !c.add() {
				return false, nil
			}
		default:
			c.turn(ctx, line)
		}
	}
	return true, nil
}

func (c *Console) turn(ctx context.Context, answer string) {
	engine := c.session.Engine()
	_, span := c.tracer.Start(ctx, "atlas.turn", trace.WithAttributes(
		attribute.String("atlas.match_id", engine.MatchID()),
		attribute.String("atlas.player", engine.ActivePlayer()),
		attribute.String("atlas.letter", string(engine.CurrentLetter())),
	))
	defer span.End()

	result, elimination := engine.PlayTurn(answer)
	span.SetAttributes(
		attribute.String("atlas.outcome", result.Outcome.String()),
		attribute.Int("atlas.penalty_count", result.PenaltyCount),
		attribute.Int("atlas.eliminated", len(elimination.Eliminated)),
		attribute.Bool("atlas.finished", elimination.Finished),
	)

	c.say("game.answer." + result.Outcome.String())
	if result.Rejected() {
		c.say("game.answer.penalty", string(result.Penalty), result.Player)
	}
	for _, name := range elimination.Eliminated {
		c.say("game.elimination.out", name)
	}
	if elimination.Finished {
		if elimination.Winner != "" {
			c.say("game.elimination.winner", elimination.Winner)
		} else {
			c.say("game.elimination.nobody")
		}
	}
}

func (c *Console) status() {
	engine := c.session.Engine()
	penaltyWord := engine.Rules().PenaltyWord
	c.say("game.status.title")
	for i, p := range engine.Roster() {
		c.say("game.status.player", i+1, p.Name())
		if p.PenaltyCount() == 0 {
			c.say("game.status.none")
			continue
		}
		c.say("game.status.letters", penaltyDisplay(p.PenaltyDisplay(penaltyWord)))
	}
	c.session.Journal().Record(journal.KindRosterDisplayed, "Displayed all players.")
}

func (c *Console) rename() bool {
	c.say("game.rename.current")
	current, ok := c.read()
	if !ok {
		return false
	}
	c.say("game.rename.next")
	next, ok := c.read()
	if !ok {
		return false
	}
	if err := c.session.Engine().RenamePlayer(current, next); err != nil {
		c.fail(err)
		return true
	}
	c.say("game.rename.done", current, next)
	return true
}

// add asks for a name and seats a new player at the end of the turn order.
func (c *Console) add() bool {
	c.say("game.add.prompt")
	name, ok := c.read()
	if !ok {
		return false
	}
	if err := c.session.Engine().AddPlayer(name); err != nil {
		c.fail(err)
		return true
	}
	c.say("game.add.done", name)
	return true
}

// offerSave asks whether to save the aborted match. Recoverable failures are
// offered again until the player declines; others end the prompt.
func (c *Console) offerSave(ctx context.Context) bool {
	for {
		c.say("game.save.prompt")
		c.say("game.save.yes")
		c.say("game.save.no")
		choice, ok := c.read()
		if !ok {
			return false
		}
		switch choice {
		case choiceYes:
			if err := c.session.Save(ctx); err != nil {
				c.fail(err)
				if !apperrors.CodeOf(err).Recoverable() {
					return true
				}
				continue
			}
			c.say("game.save.done")
			return true
		case choiceNo:
			return true
		default:
			c.say("game.menu.invalid")
		}
	}
}

func (c *Console) exit() {
	j := c.session.Journal()
	j.Record(journal.KindExited, "Exited the game.")
	if !c.printLog || j == nil {
		return
	}
	c.say("game.log.title")
	for _, entry := range j.Entries() {
		c.say("game.log.entry", entry.Timestamp.Format("Mon Jan 02 15:04:05 MST 2006"), entry.Message)
	}
}

func (c *Console) fail(err error) {
	c.say("game.error", errori18n.Localize(c.locale, err))
	c.logger.Printf("console: %v", err)
}

func (c *Console) say(key string, args ...any) {
	c.printer.Fprintf(c.out, key, args...)
	fmt.Fprintln(c.out)
}

func (c *Console) read() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// inputErr reports why reading stopped; plain end of input is not an error.
func (c *Console) inputErr() error {
	if err := c.in.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func penaltyDisplay(slots []player.Slot) string {
	var b strings.Builder
	for _, slot := range slots {
		if slot.Assigned {
			b.WriteRune(slot.Letter)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
