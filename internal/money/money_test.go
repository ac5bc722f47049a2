package money

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Value {
	t.Helper()
	var body struct {
		V Value `json:"v"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"v":`+raw+`}`), &body))
	return body.V
}

func TestCentsRounding(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{`19.999`, 2000},
		{`19.994`, 1999},
		{`0.125`, 13},
		{`-0.125`, -13},
		{`1.005`, 101},
		{`12`, 1200},
		{`"7.50"`, 750},
		{`" 3.333 "`, 333},
		{`1e2`, 10000},
		{`0`, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Cents(decode(t, tt.raw)), "input %s", tt.raw)
	}
}

func TestCentsAbsentOrInvalid(t *testing.T) {
	for _, raw := range []string{`null`, `"abc"`, `""`, `true`, `{}`, `[]`, `"NaN"`, `"Infinity"`, `1e40`} {
		v := decode(t, raw)
		assert.False(t, v.Present(), "input %s", raw)
		assert.Equal(t, int64(0), Cents(v), "input %s", raw)
		assert.Nil(t, CentsOrNil(v), "input %s", raw)
	}

	var body struct {
		V Value `json:"v"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.Equal(t, int64(0), Cents(body.V))
}

func TestExtremeExponents(t *testing.T) {
	tests := []struct {
		raw     string
		present bool
	}{
		{`1e-20000000`, true},
		{`"1e-2000000000"`, true},
		{`-5e-81`, true},
		{`1e2000000000`, false},
		{`"1e21"`, false},
		{`0e999999999`, true},
		{`1e99999999999`, false},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, tt := range tests {
			v := decode(t, tt.raw)
			assert.Equal(t, tt.present, v.Present(), "input %s", tt.raw)
			assert.Equal(t, int64(0), Cents(v), "input %s", tt.raw)
			assert.Equal(t, int64(0), Count(v, 0, 0), "input %s", tt.raw)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("parsing extreme exponents did not finish")
	}
}

func TestInputBounds(t *testing.T) {
	assert.Equal(t, int64(MaxCents), Cents(decode(t, `1000000000`)))
	assert.False(t, decode(t, `1000000000.01`).Present())
	assert.False(t, decode(t, `-1000000000.01`).Present())
	assert.False(t, decode(t, `"`+strings.Repeat("1", maxInputLen+1)+`"`).Present())
}

func TestCount(t *testing.T) {
	tests := []struct {
		raw      string
		def, min int64
		want     int64
	}{
		{`null`, 1, 0, 1},
		{`2.7`, 1, 0, 2},
		{`-3`, 1, 0, 0},
		{`0`, 1, 1, 1},
		{`-0.5`, 1, 0, 0},
		{`"4"`, 1, 1, 4},
		{`"x"`, 1, 1, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Count(decode(t, tt.raw), tt.def, tt.min), "input %s", tt.raw)
	}

	assert.Nil(t, CountOrNil(decode(t, `null`), 0))
	miles := CountOrNil(decode(t, `12.9`), 0)
	require.NotNil(t, miles)
	assert.Equal(t, int64(12), *miles)
}

func TestToUSD(t *testing.T) {
	assert.Equal(t, "19.99", ToUSD(1999).StringFixed(2))
	assert.Equal(t, "-0.05", ToUSD(-5).StringFixed(2))
	assert.Equal(t, 1.5, ToUSD(150).InexactFloat64())
}

func TestValueMarshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}{A: Parse("1.50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(b))
}
