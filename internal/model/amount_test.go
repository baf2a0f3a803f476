package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Amount
		wantErr bool
	}{
		{name: "integer", input: "10", want: "10"},
		{name: "trailing zeros trimmed", input: "12.50", want: "12.5"},
		{name: "whitespace", input: "  3.75 ", want: "3.75"},
		{name: "zero allowed", input: "0", want: "0"},
		{name: "empty", input: "", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "small exponent", input: "1.5e3", want: "1500"},
		{name: "huge exponent", input: "1e50000000", wantErr: true},
		{name: "tiny exponent", input: "1e-50000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmountValue(t *testing.T) {
	assert.True(t, Amount("12.5").Value().Equal(decimal.RequireFromString("12.5")))
	assert.True(t, Amount("garbage").Value().IsZero())
	assert.Equal(t, "12.50", Amount("12.5").Format())

	_, err := Amount("garbage").Decimal()
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Amount("1e50000000").Decimal()
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, "0.00", Amount("1e50000000").Format())
}

func TestAmountUnmarshalJSON(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.5","b":40,"c":null}`), &v))
	assert.Equal(t, Amount("12.5"), v.A)
	assert.Equal(t, Amount("40"), v.B)
	assert.Equal(t, Amount(""), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}
