package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/fill-pdf-form/internal/form"
)

type scriptedDriver struct {
	answers map[string]string
	err     error
	inputs  []InputConfig
	selects []SelectConfig
}

func (d *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.inputs = append(d.inputs, cfg)
	return d.answers[cfg.Message], d.err
}

func (d *scriptedDriver) Select(_ context.Context, cfg SelectConfig) (string, error) {
	d.selects = append(d.selects, cfg)
	return d.answers[cfg.Message], d.err
}

func TestPrompter_Ask(t *testing.T) {
	records := []form.FieldRecord{
		form.NewFieldRecord(form.KeyFieldType, "Text", form.KeyFieldName, "name",
			form.KeyFieldValue, "Jo", form.KeyFieldMaxLength, "40"),
		form.NewFieldRecord(form.KeyFieldType, "Button", form.KeyFieldName, "agree",
			form.KeyFieldValue, "Off",
			form.KeyFieldStateOption, "Off", form.KeyFieldStateOption, "Yes"),
		form.NewFieldRecord(form.KeyFieldType, "Text"),
	}
	driver := &scriptedDriver{answers: map[string]string{"name": "Jane", "agree": "Yes"}}

	entries, err := NewWithDriver(driver).Ask(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, form.Entries{{Name: "name", Value: "Jane"}, {Name: "agree", Value: "Yes"}}, entries)

	require.Len(t, driver.inputs, 1)
	assert.Equal(t, "Jo", driver.inputs[0].Default)
	assert.Equal(t, "Text field, at most 40 characters", driver.inputs[0].Help)

	require.Len(t, driver.selects, 1)
	assert.Equal(t, []string{"Off", "Yes"}, driver.selects[0].Options)
	assert.Equal(t, "Off", driver.selects[0].Default)
}

func TestPrompter_Ask_Aborted(t *testing.T) {
	records := []form.FieldRecord{form.NewFieldRecord(form.KeyFieldName, "name")}
	driver := &scriptedDriver{err: ErrAborted}

	_, err := NewWithDriver(driver).Ask(context.Background(), records)
	assert.ErrorIs(t, err, ErrAborted)
}

func TestSurveyDriver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := surveyDriver{}.Input(ctx, InputConfig{Message: "x"})
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = surveyDriver{}.Select(ctx, SelectConfig{Message: "x", Options: []string{"a"}})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestIndexOf(t *testing.T) {
	assert.Equal(t, 1, indexOf([]string{"a", "b"}, "b"))
	assert.Equal(t, -1, indexOf([]string{"a"}, "z"))
}
