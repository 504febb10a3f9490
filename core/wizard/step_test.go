package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStep(t *testing.T) {
	tests := []struct {
		val    string
		want   Step
		wantOk bool
	}{
		{val: "details", want: StepDetails, wantOk: true},
		{val: "participants", want: StepParticipants, wantOk: true},
		{val: "2", want: StepAttendance, wantOk: true},
		{val: "documents", want: StepDocuments, wantOk: true},
		{val: "4"},
		{val: "summary"},
		{val: ""},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			got, ok := ParseStep(tt.val)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnlocked(t *testing.T) {
	tests := []struct {
		step         Step
		hasScheduled bool
		want         bool
	}{
		{step: StepDetails, want: true},
		{step: StepParticipants, want: true},
		{step: StepAttendance},
		{step: StepDocuments},
		{step: StepAttendance, hasScheduled: true, want: true},
		{step: StepDocuments, hasScheduled: true, want: true},
		{step: Step(7), hasScheduled: true},
	}
	for _, tt := range tests {
		t.Run(tt.step.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Unlocked(tt.step, tt.hasScheduled))
		})
	}
}

func TestStepMachine(t *testing.T) {
	var m StepMachine
	assert.Equal(t, StepDetails, m.Current())
	assert.False(t, m.Back())
	assert.Equal(t, StepDetails, m.Current())

	for i := 1; i < StepCount; i++ {
		assert.True(t, m.Next())
	}
	assert.Equal(t, StepDocuments, m.Current())
	assert.False(t, m.Next())
	assert.Equal(t, StepDocuments, m.Current())

	assert.False(t, m.Set(Step(-1)))
	assert.True(t, m.Set(StepParticipants))
	assert.Equal(t, "participants", m.Current().String())
}
