package money_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
)

func TestParse(t *testing.T) {
	m, err := money.Parse("1234.50")
	require.NoError(t, err)
	require.Equal(t, "1234.50", m.String())

	m, err = money.Parse("10")
	require.NoError(t, err)
	require.Equal(t, "10.00", m.String())

	// trailing zeros past the scale carry no extra precision
	m, err = money.Parse("1.5000")
	require.NoError(t, err)
	require.Equal(t, "1.50", m.String())
}

func TestParse_RejectsExcessPrecision(t *testing.T) {
	_, err := money.Parse("1.005")
	require.Error(t, err)

	_, err = money.Parse("0.001")
	require.Error(t, err)

	_, err = money.Parse("not-a-number")
	require.Error(t, err)
}

func TestFromUnits(t *testing.T) {
	m, err := money.FromUnits(12, 5)
	require.NoError(t, err)
	require.Equal(t, "12.05", m.String())

	_, err = money.FromUnits(12, 105)
	require.Error(t, err)

	_, err = money.FromUnits(-1, 0)
	require.Error(t, err)
}

func TestArithmetic(t *testing.T) {
	a := money.MustParse("1000.00")
	b := money.MustParse("150.00")

	require.Equal(t, "2150.00", a.MulInt(2).Add(b).String())
	require.Equal(t, "850.00", a.Sub(b).String())
	require.True(t, a.Sub(a).IsZero())
	require.True(t, b.Sub(a).IsNegative())
	require.True(t, a.IsPositive())
	require.Equal(t, 1, a.Cmp(b))
}

func TestJSONRoundTrip(t *testing.T) {
	var m money.Money
	require.NoError(t, json.Unmarshal([]byte(`"99.90"`), &m))
	require.Equal(t, "99.90", m.String())

	// bare number tokens are accepted too
	require.NoError(t, json.Unmarshal([]byte(`1000`), &m))
	require.Equal(t, "1000.00", m.String())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, `"1000.00"`, string(out))

	require.Error(t, json.Unmarshal([]byte(`"1.005"`), &m))
}
