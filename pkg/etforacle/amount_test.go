package etforacle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "thousands separator", input: "38,487.24", want: "38487.24"},
		{name: "explicit plus", input: "+320.10", want: "320.1"},
		{name: "negative", input: "-12.45", want: "-12.45"},
		{name: "percent suffix", input: "0.84%", want: "0.84"},
		{name: "empty is zero", input: "  ", want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := ParseAmount("abc")
	assert.True(t, IsErrorCode(err, ErrCodeInvalidInput))
}

func TestAmountSigned(t *testing.T) {
	assert.Equal(t, "+25.30", MustAmount("25.3").Signed(2))
	assert.Equal(t, "-12.45", MustAmount("-12.45").Signed(2))
	assert.Equal(t, "0.00", MustAmount("0").Signed(2))
}

func TestAmountJSONIsNumber(t *testing.T) {
	data, err := json.Marshal(struct {
		Price Amount `json:"price"`
	}{Price: MustAmount("5,026.61")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":5026.61}`, string(data))

	var decoded struct {
		Price Amount `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":"4765.22"}`), &decoded))
	assert.Equal(t, "4765.22", decoded.Price.String())
}

func TestAmountYAML(t *testing.T) {
	var point PricePoint
	require.NoError(t, yaml.Unmarshal([]byte(`{label: "09:00", price: 4000}`), &point))
	assert.Equal(t, "4000", point.Price.String())

	err := yaml.Unmarshal([]byte("price: [1, 2]"), &point)
	assert.Error(t, err)
}
