package people

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTristateJSON(t *testing.T) {
	tests := []struct {
		name string
		in   Tristate
		want string
	}{
		{name: "true", in: True, want: "true"},
		{name: "false", in: False, want: "false"},
		{name: "unknown", in: Unknown, want: "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			var back Tristate = 99
			require.NoError(t, json.Unmarshal(got, &back))
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestTristateUnmarshalRejectsNonBool(t *testing.T) {
	var ts Tristate
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`1`), &ts))
}

func TestTristateSQL(t *testing.T) {
	v, err := Unknown.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = True.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = False.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	_, err = Tristate(7).Value()
	assert.Error(t, err)

	var ts Tristate
	require.NoError(t, ts.Scan(nil))
	assert.Equal(t, Unknown, ts)
	require.NoError(t, ts.Scan(int64(1)))
	assert.Equal(t, True, ts)
	require.NoError(t, ts.Scan(int64(0)))
	assert.Equal(t, False, ts)
	assert.Error(t, ts.Scan("1"))
}

func TestParseTristate(t *testing.T) {
	tests := []struct {
		in     any
		want   Tristate
		wantOK bool
	}{
		{nil, Unknown, true},
		{true, True, true},
		{false, False, true},
		{True, True, true},
		{1.0, True, true},
		{0.0, False, true},
		{int64(1), True, true},
		{" YES ", True, true},
		{"off", False, true},
		{"none", Unknown, true},
		{"unknown", Unknown, true},
		{0.5, Unknown, false},
		{"y", Unknown, false},
		{Tristate(5), Unknown, false},
		{map[string]any{}, Unknown, false},
	}
	for _, tt := range tests {
		got, ok := ParseTristate(tt.in)
		assert.Equal(t, tt.wantOK, ok, "%#v", tt.in)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
	}
}

func TestPersonJSONRendersNulls(t *testing.T) {
	p := Person{ID: 7, Record: Record{FirstName: "Ada", LastName: "Lovelace"}}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 7.0, out["id"])
	for _, name := range Fields[2:] {
		v, ok := out[name]
		assert.True(t, ok, "missing %s", name)
		assert.Nil(t, v, name)
	}
	assert.Len(t, out, len(Fields)+1)
}
