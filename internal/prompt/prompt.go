// Package prompt asks for form values on the terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/a3tai/fill-pdf-form/internal/form"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// InputConfig configures a free text prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// SelectConfig configures a single choice prompt.
type SelectConfig struct {
	Message string
	Options []string
	Default string
	Help    string
}

// Driver abstracts the terminal so the prompt flow can be tested without one.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Select(ctx context.Context, cfg SelectConfig) (string, error)
}

// Prompter asks for a value for every named field.
type Prompter struct {
	driver Driver
}

// New returns a prompter using survey on the process terminal.
func New() *Prompter {
	return &Prompter{driver: surveyDriver{}}
}

// NewWithDriver returns a prompter using driver.
func NewWithDriver(driver Driver) *Prompter {
	return &Prompter{driver: driver}
}

// Ask prompts for each field in order. Fields with state options get a
// choice list; the field's current value is offered as the default.
func (p *Prompter) Ask(ctx context.Context, records []form.FieldRecord) (form.Entries, error) {
	entries := make(form.Entries, 0, len(records))
	for _, rec := range records {
		name := rec.Name()
		if name == "" {
			continue
		}
		current, _ := rec.Get(form.KeyFieldValue)
		help := helpText(rec)

		var value string
		var err error
		if options := rec.Values(form.KeyFieldStateOption); len(options) > 0 {
			value, err = p.driver.Select(ctx, SelectConfig{
				Message: name,
				Options: options,
				Default: current,
				Help:    help,
			})
		} else {
			value, err = p.driver.Input(ctx, InputConfig{
				Message: name,
				Default: current,
				Help:    help,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		entries = append(entries, form.Assignment{Name: name, Value: value})
	}
	return entries, nil
}

func helpText(rec form.FieldRecord) string {
	typ := rec.Type()
	if typ == "" {
		return ""
	}
	if maxLen, ok := rec.Get(form.KeyFieldMaxLength); ok {
		return fmt.Sprintf("%s field, at most %s characters", typ, maxLen)
	}
	return typ + " field"
}

type surveyDriver struct{}

func (surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyDriver) Select(ctx context.Context, cfg SelectConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
		Help:    cfg.Help,
	}
	// survey rejects a default that is not one of the options
	if indexOf(cfg.Options, cfg.Default) >= 0 {
		prompt.Default = cfg.Default
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}
