package spectrum

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/session"
)

// Runner is a line-oriented gradient editor bound to one session.
// It allows for easy testing and integration with different frontends.
type Runner struct {
	Input     io.Reader
	Output    io.Writer
	SessionID string
	Headless  bool
	Renderer  GradientRenderer
}

// GradientRenderer turns a committed gradient into display text
// (for example an ANSI swatch) without coupling the core package to a terminal.
type GradientRenderer func(domain.Gradient) (string, error)

// ErrUnknownCommand is returned for input the runner cannot parse.
var ErrUnknownCommand = errors.New("unknown command")

const runnerHelp = `commands:
  add [token]            append a color (white when omitted)
  set <index> <token>    edit a color
  rm <index>             remove a color
  dir <direction>        set the direction, e.g. "to top" or 45deg
  preset <name>          load a preset
  replace <tok> <tok>... replace every color
  presets                list presets
  show                   print the current gradient
  help                   print this help
  quit                   leave`

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner(sessionID string) *Runner {
	return &Runner{SessionID: sessionID}
}

// Run opens the session and executes commands until EOF or quit.
func (r *Runner) Run(ctx context.Context, engine *Engine) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)

	snap, err := engine.Open(ctx, r.SessionID, session.OpenConfig{})
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	r.SessionID = snap.SessionID

	if !r.Headless {
		fmt.Fprintf(r.Output, "--- Spectrum (session %s) ---\n", r.SessionID)
	}
	r.show(snap)

	for {
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := lineReader.ReadString('\n')
		line := strings.TrimSpace(text)
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit":
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		case "help":
			fmt.Fprintln(r.Output, runnerHelp)
			continue
		case "show":
			snap, err := engine.Get(ctx, r.SessionID)
			if err != nil {
				return err
			}
			r.show(snap)
			continue
		case "presets":
			presets, err := engine.Catalog().List(ctx)
			if err != nil {
				fmt.Fprintf(r.Output, "error: %v\n", err)
				continue
			}
			for _, p := range presets {
				fmt.Fprintf(r.Output, "%s: %s\n", p.Name, strings.Join(p.Colors, ", "))
			}
			continue
		}

		mut, err := ParseCommand(line)
		if err != nil {
			fmt.Fprintf(r.Output, "error: %v\n", err)
			continue
		}
		res, err := engine.Apply(ctx, r.SessionID, mut)
		if err != nil {
			fmt.Fprintf(r.Output, "error: %v\n", err)
			continue
		}
		if !res.Applied {
			if mut.Kind == domain.MutationSet && mut.Index < len(res.Snapshot.Drafts) {
				fmt.Fprintf(r.Output, "draft %d held: %s\n", mut.Index, res.Snapshot.Drafts[mut.Index])
			} else {
				fmt.Fprintln(r.Output, "unchanged")
			}
			continue
		}
		r.show(res.Snapshot)
	}
}

func (r *Runner) show(snap *domain.Snapshot) {
	out := snap.Expression
	if r.Renderer != nil {
		if rendered, err := r.Renderer(snap.Gradient()); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimRight(out, "\n"))
}

// ParseCommand maps one editor line onto a mutation.
func ParseCommand(line string) (domain.Mutation, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Mutation{}, ErrUnknownCommand
	}
	verb, args := fields[0], fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, verb))

	switch verb {
	case "add":
		return domain.Mutation{Kind: domain.MutationAdd, Token: rest}, nil
	case "rm", "remove":
		if len(args) != 1 {
			return domain.Mutation{}, fmt.Errorf("usage: rm <index>")
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return domain.Mutation{}, fmt.Errorf("invalid index %q", args[0])
		}
		return domain.Mutation{Kind: domain.MutationRemove, Index: i}, nil
	case "set":
		if len(args) < 2 {
			return domain.Mutation{}, fmt.Errorf("usage: set <index> <token>")
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return domain.Mutation{}, fmt.Errorf("invalid index %q", args[0])
		}
		token := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
		return domain.Mutation{Kind: domain.MutationSet, Index: i, Token: token}, nil
	case "dir", "direction":
		return domain.Mutation{Kind: domain.MutationDirection, Direction: rest}, nil
	case "preset":
		return domain.Mutation{Kind: domain.MutationPreset, Preset: rest}, nil
	case "replace":
		return domain.Mutation{Kind: domain.MutationReplace, Tokens: splitTokens(rest)}, nil
	default:
		return domain.Mutation{}, fmt.Errorf("%w: %s", ErrUnknownCommand, verb)
	}
}

// splitTokens splits on whitespace outside parentheses so "rgb(1, 2, 3)" stays whole.
func splitTokens(s string) []string {
	var tokens []string
	var cur strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case (r == ' ' || r == '\t' || r == ',') && depth == 0:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
