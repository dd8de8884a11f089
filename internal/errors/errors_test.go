package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	ee := Newf("something broke").Build()
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}

func TestSentinelMatchingThroughBuilder(t *testing.T) {
	ee := New(ErrFileMissing).
		Component("voice").
		Category(CategoryAudioFile).
		Context("path", "cheers/missing.mp3").
		Build()

	require.Error(t, ee)
	assert.True(t, Is(ee, ErrFileMissing))
	assert.False(t, Is(ee, ErrPathBlocked))
	assert.Equal(t, "cheers/missing.mp3", ee.GetContext()["path"])
}

func TestCategoryEquality(t *testing.T) {
	a := Newf("a").Category(CategoryTriggerLedger).Build()
	b := Newf("b").Category(CategoryTriggerLedger).Build()
	assert.True(t, stderrors.Is(a, b))
}

type captureReporter struct {
	got []*EnhancedError
}

func (c *captureReporter) ReportError(ee *EnhancedError) {
	c.got = append(c.got, ee)
}

func TestReporterReceivesBuiltErrors(t *testing.T) {
	rep := &captureReporter{}
	SetReporter(rep)
	defer SetReporter(nil)

	Newf("reported").Component("scheduler").Build()
	require.Len(t, rep.got, 1)
	assert.Equal(t, "scheduler", rep.got[0].Component)
}
