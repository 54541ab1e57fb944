package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jacoelho/kq/internal/config"
	"github.com/jacoelho/kq/internal/exit"
	"github.com/jacoelho/kq/internal/formatter"
	"github.com/jacoelho/kq/internal/formatter/structured"
	"github.com/jacoelho/kq/internal/formatter/text"
	"github.com/jacoelho/kq/internal/kdl"
	"github.com/jacoelho/kq/internal/query"
)

const stdinName = "-"

// Runner executes one compiled query against the configured inputs and writes the
// matches with the configured formatter.
type Runner struct {
	config    *config.Config
	query     *query.Query
	formatter formatter.Formatter
	log       *logrus.Entry
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
}

// New compiles the selector and prepares the output for cfg.
func New(cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) (*Runner, *exit.Result) {
	q, err := query.Compile(cfg.Selector)
	if err != nil {
		return nil, exit.Failure(err)
	}

	f, err := newFormatter(cfg, stdout)
	if err != nil {
		return nil, exit.Failure(err)
	}

	r := &Runner{
		config:    cfg,
		query:     q,
		formatter: f,
		log:       newLogger(cfg, stderr).WithFields(logrus.Fields{"query_id": uuid.NewString(), "selector": q.String()}),
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
	}

	for _, construct := range q.Reserved() {
		r.log.WithField("construct", construct).Warn("selector construct is reserved and never matches")
	}

	return r, nil
}

func newFormatter(cfg *config.Config, w io.Writer) (formatter.Formatter, error) {
	if cfg.Output.Structured() {
		return structured.New(w, cfg.Output, cfg.JSONPath)
	}
	return text.New(w, cfg.Color), nil
}

func newLogger(cfg *config.Config, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})

	logger.SetLevel(logrus.WarnLevel)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// Run queries every input in order and writes the matches of all inputs as one result.
// It returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	start := time.Now()

	inputs := r.config.Files
	if len(inputs) == 0 {
		inputs = []string{stdinName}
	}

	var matches []*kdl.Node
	for _, name := range inputs {
		if err := ctx.Err(); err != nil {
			return r.fail(fmt.Errorf("interrupted before %s: %w", displayName(name), err))
		}

		found, err := r.runInput(name)
		if err != nil {
			return r.fail(err)
		}
		matches = append(matches, found...)
	}

	if err := r.formatter.Format(matches); err != nil {
		return r.fail(fmt.Errorf("write output: %w", err))
	}

	r.log.WithFields(logrus.Fields{
		"inputs":  len(inputs),
		"matches": len(matches),
		"elapsed": time.Since(start),
	}).Debug("query finished")

	return 0
}

// runInput parses one input and returns its matches. Sibling relations never span inputs.
func (r *Runner) runInput(name string) ([]*kdl.Node, error) {
	document, err := r.parse(name)
	if err != nil {
		return nil, err
	}

	matches := r.query.Run(document)

	r.log.WithFields(logrus.Fields{
		"input":   displayName(name),
		"nodes":   countNodes(document),
		"matches": len(matches),
	}).Debug("input queried")

	return matches, nil
}

func (r *Runner) parse(name string) ([]*kdl.Node, error) {
	if name == stdinName {
		document, err := kdl.Parse(r.stdin)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", displayName(name), err)
		}
		return document, nil
	}

	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer file.Close()

	document, err := kdl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return document, nil
}

func (r *Runner) fail(err error) int {
	result := exit.Failure(err)
	result.Print(r.stdout, r.stderr)
	return result.ExitCode
}

func displayName(name string) string {
	if name == stdinName {
		return "<stdin>"
	}
	return name
}

func countNodes(nodes []*kdl.Node) int {
	count := len(nodes)
	for _, n := range nodes {
		count += countNodes(n.Children)
	}
	return count
}
