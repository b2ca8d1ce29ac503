package process_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/process"
	"github.com/nitta-corp/nitta/value"
)

func TestRecord_AddStepIsImmutable(t *testing.T) {
	r0 := process.NewRecord()
	r1, id := r0.AddStep(value.Point(5), process.KindCAD, "bind f to acc", nil)
	assert.Equal(t, 0, id)
	assert.Empty(t, r0.Steps())
	require.Len(t, r1.Steps(), 1)
	assert.Equal(t, "bind f to acc", r1.Steps()[0].Desc)
}

func TestRecord_AddRelation_UnknownStep(t *testing.T) {
	r := process.NewRecord()
	r, _ = r.AddStep(value.Point(0), process.KindCAD, "x", nil)
	_, err := r.AddRelation(0, 99)
	assert.ErrorIs(t, err, process.ErrUnknownStep)
}

func TestRecord_UpdateTick_Monotone(t *testing.T) {
	r := process.NewRecord()
	r, err := r.UpdateTick(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.Tick())
	_, err = r.UpdateTick(1)
	assert.ErrorIs(t, err, process.ErrNonMonotoneTick)
}

func TestRecord_Queries(t *testing.T) {
	r := process.NewRecord()
	r, _ = r.AddStep(value.Interval{Inf: 0, Sup: 0}, process.KindInstruction, "Load(3)", nil)
	var transportID int
	r, transportID = r.AddStep(value.Interval{Inf: 1, Sup: 1}, process.KindTransport, "Transport(a, fram1, acc)",
		process.TransportPayload{Var: "a", SrcTag: "fram1", DstTag: "acc"})

	assert.Len(t, r.InstructionAt(0), 1)
	assert.Len(t, r.EndpointAt(0), 0)
	assert.Equal(t, []string{"a"}, r.TransferredVariables())

	steps := r.WhatHappensAt(1)
	require.Len(t, steps, 1)
	assert.Equal(t, transportID, steps[0].ID)
}
