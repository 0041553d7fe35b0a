package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user aborted input (e.g. Ctrl+C).
var ErrAborted = errors.New("prompt: aborted")

// InputConfig describes a single-line question. Validator rejects an answer
// inline, before it is accepted.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// TextAreaConfig describes a multi-line question.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// SelectConfig describes a choice between Options. Selected holds the
// indices picked before the question is asked: the first one for a single
// choice, all of them for a multi choice.
type SelectConfig struct {
	Message  string
	Help     string
	Options  []string
	Selected []int
}

// Driver asks questions on behalf of Fill. Implementations other than the
// survey one exist mostly for tests.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	Info(ctx context.Context, msg string) error
}

// DriverOption configures the survey driver.
type DriverOption func(*surveyDriver)

// WithStdio runs the prompts on the given streams instead of the process
// terminal.
func WithStdio(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) DriverOption {
	return func(d *surveyDriver) {
		d.stdio = &terminal.Stdio{In: in, Out: out, Err: errOut}
		d.info = out
	}
}

// WithPageSize limits how many options a choice shows at once.
func WithPageSize(n int) DriverOption {
	return func(d *surveyDriver) {
		if n > 0 {
			d.pageSize = n
		}
	}
}

type surveyDriver struct {
	stdio    *terminal.Stdio
	info     io.Writer
	pageSize int
}

// NewSurveyDriver returns a Driver prompting through survey.
func NewSurveyDriver(opts ...DriverOption) Driver {
	d := &surveyDriver{info: os.Stdout}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// ask runs one survey prompt, honouring ctx and the configured streams.
func (d *surveyDriver) ask(ctx context.Context, p survey.Prompt, answer any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.stdio != nil {
		opts = append(opts, survey.WithStdio(d.stdio.In, d.stdio.Out, d.stdio.Err))
	}
	err := survey.AskOne(p, answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var opts []survey.AskOpt
	if validate := cfg.Validator; validate != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}
	var answer string
	err := d.ask(ctx, &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer, opts...)
	return answer, err
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Multiline{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer)
	return answer, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	p := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: d.pageSize}
	if picked := pick(cfg.Options, cfg.Selected); len(picked) > 0 {
		p.Default = picked[0]
	}
	var answer string
	if err := d.ask(ctx, p, &answer); err != nil {
		return -1, err
	}
	positions := positionsOf(cfg.Options, []string{answer})
	if len(positions) == 0 {
		return -1, fmt.Errorf("prompt: answer %q is not an option", answer)
	}
	return positions[0], nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	p := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: d.pageSize}
	if picked := pick(cfg.Options, cfg.Selected); len(picked) > 0 {
		p.Default = picked
	}
	var answer []string
	if err := d.ask(ctx, p, &answer); err != nil {
		return nil, err
	}
	return positionsOf(cfg.Options, answer), nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.info, msg)
	return err
}

// pick returns the options at indices, skipping out of range ones.
func pick(options []string, indices []int) []string {
	var out []string
	for _, i := range indices {
		if i >= 0 && i < len(options) {
			out = append(out, options[i])
		}
	}
	return out
}

// positionsOf returns the indices of answers within options, in option order.
func positionsOf(options, answers []string) []int {
	chosen := make(map[string]bool, len(answers))
	for _, a := range answers {
		chosen[a] = true
	}
	var out []int
	for i, option := range options {
		if chosen[option] {
			out = append(out, i)
		}
	}
	return out
}
