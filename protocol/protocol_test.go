package protocol_test

import (
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-counter/protocol"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		want protocol.Command
	}{
		{"OUTPUT", protocol.Command{Kind: protocol.Output}},
		{"INCR 5", protocol.Command{Kind: protocol.Increment, Delta: 5}},
		{"INCR -7", protocol.Command{Kind: protocol.Increment, Delta: -7}},
		{"INCR +3", protocol.Command{Kind: protocol.Increment, Delta: 3}},
		{"DECR 10", protocol.Command{Kind: protocol.Decrement, Delta: 10}},
		{"DECR 9223372036854775807", protocol.Command{Kind: protocol.Decrement, Delta: math.MaxInt64}},

		{"", protocol.Command{}},
		{"output", protocol.Command{}},
		{"OUTPUT ", protocol.Command{}},
		{"OUTPUTX", protocol.Command{}},
		{"INCR", protocol.Command{}},
		{"INCR ", protocol.Command{}},
		{"INCR abc", protocol.Command{}},
		{"INCR 5abc", protocol.Command{}},
		{"INCR  5", protocol.Command{}},
		{"INCR 5 ", protocol.Command{}},
		{"incr 5", protocol.Command{}},
		{"DECR 9223372036854775808", protocol.Command{}},
		{"MULT 2", protocol.Command{}},
	}
	for _, tc := range cases {
		t.Run(strconv.Quote(tc.line), func(t *testing.T) {
			assert.Equal(t, tc.want, protocol.Parse(tc.line))
		})
	}
}

func TestApplyOutputRepliesOnly(t *testing.T) {
	v, res := protocol.Apply(42, protocol.Command{Kind: protocol.Output})
	assert.Equal(t, int64(42), v)
	assert.Equal(t, "42", string(res.Reply))
	assert.Nil(t, res.Broadcast)
}

func TestApplyIncrementBroadcasts(t *testing.T) {
	v, res := protocol.Apply(0, protocol.Command{Kind: protocol.Increment, Delta: 3})
	assert.Equal(t, int64(3), v)
	assert.Nil(t, res.Reply)
	assert.Equal(t, "3", string(res.Broadcast))
}

func TestApplyDecrementGoesNegative(t *testing.T) {
	v, res := protocol.Apply(0, protocol.Command{Kind: protocol.Decrement, Delta: 10})
	assert.Equal(t, int64(-10), v)
	assert.Equal(t, "-10", string(res.Broadcast))

	_, res = protocol.Apply(v, protocol.Command{Kind: protocol.Output})
	assert.Equal(t, "-10", string(res.Reply))
}

func TestApplyUnrecognizedIsNoop(t *testing.T) {
	v, res := protocol.Apply(7, protocol.Parse("INCR abc"))
	assert.Equal(t, int64(7), v)
	assert.Equal(t, protocol.Result{}, res)
}

func TestCounterRunningSum(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var c protocol.Counter
	var want int64
	for i := 0; i < 500; i++ {
		delta := rng.Int63n(2001) - 1000
		if rng.Intn(2) == 0 {
			c.Handle("INCR " + strconv.FormatInt(delta, 10))
			want += delta
		} else {
			c.Handle("DECR " + strconv.FormatInt(delta, 10))
			want -= delta
		}
		if i%50 == 0 {
			_, res := c.Handle("OUTPUT")
			require.Equal(t, strconv.FormatInt(want, 10), string(res.Reply))
		}
	}
	assert.Equal(t, want, c.Value())
}

func TestCounterHandleReportsCommand(t *testing.T) {
	var c protocol.Counter
	cmd, res := c.Handle("INCR 5")
	assert.Equal(t, protocol.Increment, cmd.Kind)
	assert.Equal(t, "5", string(res.Broadcast))

	cmd, res = c.Handle("OUTPUT")
	assert.Equal(t, protocol.Output, cmd.Kind)
	assert.Equal(t, "5", string(res.Reply))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "INCR", protocol.Increment.String())
	assert.Equal(t, "unrecognized", protocol.Unrecognized.String())
	assert.Equal(t, "Kind(9)", protocol.Kind(9).String())
}
