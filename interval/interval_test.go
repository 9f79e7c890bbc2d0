package interval_test

import (
	"testing"

	"github.com/grailbio/rnpbind/interval"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalid(t *testing.T) {
	_, err := interval.New(10, 9)
	require.Error(t, err)
	assert.True(t, interval.IsInvalidInterval(err))

	iv, err := interval.New(9, 9)
	require.NoError(t, err)
	assert.True(t, iv.Annotation.IsEmpty())

	iv, err = interval.New(1, 5, "x")
	require.NoError(t, err)
	v, ok := iv.Annotation.Value()
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		a, b interval.Interval
		want bool
	}{
		{interval.Must(50, 70), interval.Must(60, 90), true},
		{interval.Must(50, 70), interval.Must(50, 90), true},
		{interval.Must(50, 70), interval.Must(70, 90), true}, // touching
		{interval.Must(50, 70), interval.Must(71, 90), false},
		{interval.Must(20, 100), interval.Must(400, 600), false},
		{interval.Must(50, 100), interval.Must(99, 99), true},
	}
	for _, test := range tests {
		expect.EQ(t, test.a.Overlaps(test.b), test.want)
		expect.EQ(t, test.b.Overlaps(test.a), test.want)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b interval.Interval
		want interval.PosType
	}{
		{interval.Must(70, 90), interval.Must(100, 120), 10},
		{interval.Must(100, 120), interval.Must(70, 90), 10},
		{interval.Must(70, 100), interval.Must(100, 120), 0},
		{interval.Must(70, 110), interval.Must(100, 120), 0},
		{interval.Must(5, 5), interval.Must(7, 7), 2},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, interval.Distance(test.a, test.b), "%v %v", test.a, test.b)
	}
}

func TestExpand(t *testing.T) {
	iv := interval.Must(400, 500, "a").Expand(30)
	assert.Equal(t, interval.Must(370, 530), iv)
}

func TestAnnotation(t *testing.T) {
	assert.True(t, interval.Multi().IsEmpty())
	assert.True(t, interval.Multi("", "").IsEmpty())
	assert.True(t, interval.Single("").IsEmpty())

	a := interval.Multi("b", "a", "b")
	assert.True(t, a.IsMulti())
	assert.Equal(t, []string{"a", "b"}, a.Values())
	assert.Equal(t, "{a, b}", a.String())

	one := interval.Multi("a", "a")
	assert.False(t, one.IsMulti())
	assert.True(t, one.Equal(interval.Single("a")))

	merged := interval.DefaultMerge([]interval.Annotation{interval.Single("x"), {}, a})
	assert.Equal(t, []string{"a", "b", "x"}, merged.Values())

	joined := interval.JoinMerge(";")([]interval.Annotation{interval.Single("x"), {}, interval.Single("x"), interval.Single("y")})
	v, ok := joined.Value()
	assert.True(t, ok)
	assert.Equal(t, "x;x;y", v)

	assert.True(t, interval.JoinMerge(";")(nil).IsEmpty())
}
