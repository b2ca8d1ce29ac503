package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/value"
)

func TestTime_AddUntagged(t *testing.T) {
	a := value.Untagged(10)
	b := value.Untagged(5)
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(15), sum.Clock)
	assert.Equal(t, value.Tag(""), sum.Tag)
}

func TestTime_AddSameTag(t *testing.T) {
	a := value.Tagged("branch1", 10)
	b := value.Tagged("branch1", 5)
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, value.Tag("branch1"), sum.Tag)
}

func TestTime_AddMismatchedTags(t *testing.T) {
	a := value.Tagged("branch1", 10)
	b := value.Tagged("branch2", 5)
	_, err := a.Add(b)
	assert.ErrorIs(t, err, value.ErrTagMismatch)
}

func TestInterval_WidthAndContains(t *testing.T) {
	iv := value.Interval{Inf: 3, Sup: 7}
	assert.Equal(t, int64(5), iv.Width())
	assert.True(t, iv.Contains(3))
	assert.True(t, iv.Contains(7))
	assert.False(t, iv.Contains(8))
}

func TestInterval_Empty(t *testing.T) {
	iv := value.Interval{Inf: 7, Sup: 3}
	assert.True(t, iv.Empty())
	assert.Equal(t, int64(0), iv.Width())
}

func TestConstraint_Admits(t *testing.T) {
	c := value.Constraint{
		Available: value.Interval{Inf: 0, Sup: 10},
		Duration:  value.Interval{Inf: 1, Sup: 3},
	}
	assert.True(t, c.Admits(0, 1))
	assert.True(t, c.Admits(8, 3))
	assert.False(t, c.Admits(9, 3)) // start+dur-1 = 11 > Available.Sup
	assert.False(t, c.Admits(0, 4)) // duration exceeds Duration.Sup
}

func TestConstraint_EarliestStart(t *testing.T) {
	c := value.Constraint{Available: value.Interval{Inf: 5, Sup: value.BoundedMax}}
	assert.Equal(t, int64(5), c.EarliestStart(0))
	assert.Equal(t, int64(9), c.EarliestStart(9))
}
