package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBalanceFromStringRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"zero", "0", false},
		{"large", "123456789012345678901234", false},
		{"negative", "-1", true},
		{"garbage", "not-a-number", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := BalanceFromString(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.in, b.String())
		})
	}
}

func TestBalanceArithmetic(t *testing.T) {
	a := BalanceFromUint64(100)
	b := BalanceFromUint64(40)

	require.Equal(t, "140", a.Add(b).String())
	require.Equal(t, "60", a.Sub(b).String())
	require.Equal(t, "400", a.Mul(4).String())
	require.True(t, b.LessThan(a))
	require.False(t, a.LessThan(b))
}

func TestBalanceSubCheckedUnderflow(t *testing.T) {
	small := BalanceFromUint64(1)
	large := BalanceFromUint64(2)
	_, err := small.SubChecked(large)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestBalanceMulDivFloor(t *testing.T) {
	tests := []struct {
		name     string
		total    uint64
		num      uint64
		den      uint64
		expected string
	}{
		{"half remaining", 100, 1, 2, "50"},
		{"all remaining", 100, 3, 3, "100"},
		{"floors down", 10, 1, 3, "3"},
		{"zero denominator", 10, 1, 0, "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := BalanceFromUint64(tc.total)
			require.Equal(t, tc.expected, b.MulDivFloor(tc.num, tc.den).String())
		})
	}
}
