package scoring

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNormalize_Totality(t *testing.T) {
	// Every input yields a value, never a panic or error surface.
	inputs := []interface{}{
		nil,
		"",
		"   ",
		"garbage",
		"{not json",
		"[1,2,3]",
		"{}",
		map[string]interface{}{},
		map[string]interface{}{"other": 1},
		[]interface{}{1, 2},
		true,
		struct{}{},
	}
	for _, in := range inputs {
		got := Normalize(in)
		if !got.Equal(decimal.Zero) {
			t.Errorf("Normalize(%#v) = %s, want 0", in, got)
		}
	}
}

func TestNormalize_Values(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want string
	}{
		{"int", 3, "3"},
		{"int32", int32(4), "4"},
		{"int64", int64(5), "5"},
		{"float", 2.5, "2.5"},
		{"numeric string", "3.5", "3.5"},
		{"padded numeric string", " 4 ", "4"},
		{"label Inicial", "Inicial", "1"},
		{"label Repetido", "Repetido", "2"},
		{"label Definido", "Definido", "3"},
		{"label Gerenciado", "Gerenciado", "4"},
		{"label Otimizado", "Otimizado", "5"},
		{"mapping", map[string]interface{}{"value": 4}, "4"},
		{"nested mapping", map[string]interface{}{"value": map[string]interface{}{"value": 2}}, "2"},
		{"mapping with label", map[string]interface{}{"value": "Definido"}, "3"},
		{"json string", `{"value": 4}`, "4"},
		{"json string with label", `{"type":"scale","value":"Gerenciado"}`, "4"},
		{"decimal passthrough", dec("1.7"), "1.7"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Normalize(c.in)
			if !got.Equal(dec(c.want)) {
				t.Errorf("Normalize(%#v) = %s, want %s", c.in, got, c.want)
			}
		})
	}
}

func TestParseValue_ErrorsOnMalformed(t *testing.T) {
	malformed := []interface{}{
		"garbage",
		"{not json",
		map[string]interface{}{"other": 1},
		true,
	}
	for _, in := range malformed {
		if _, err := ParseValue(in); err == nil {
			t.Errorf("ParseValue(%#v) = nil error, want parse error", in)
		}
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); !got.Equal(decimal.Zero) {
		t.Errorf("Mean(nil) = %s, want 0", got)
	}
	got := Mean([]decimal.Decimal{dec("1"), dec("2"), dec("4")})
	want := dec("7").Div(dec("3"))
	if !got.Equal(want) {
		t.Errorf("Mean = %s, want %s", got, want)
	}
}

func TestRound1_HalfUp(t *testing.T) {
	cases := map[string]string{
		"2.25":   "2.3",
		"2.24":   "2.2",
		"2.3333": "2.3",
		"0":      "0",
		"4.95":   "5",
	}
	for in, want := range cases {
		if got := Round1(dec(in)); !got.Equal(dec(want)) {
			t.Errorf("Round1(%s) = %s, want %s", in, got, want)
		}
	}
}
