package analysis

import (
	"reflect"
	"testing"
)

func TestNormalizeSetAsides(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"canonical passes through", []string{"SDVOSB"}, []string{"SDVOSB"}},
		{"alias mapped", []string{"small business set-aside"}, []string{"SB"}},
		{"name mapped", []string{"Women-Owned Small Business"}, []string{"WOSB"}},
		{"8a shorthand", []string{"8a"}, []string{"8(a)"}},
		{"unrestricted alias", []string{"unrestricted"}, []string{"Full & Open"}},
		{
			"dedupe across phrasings",
			[]string{"SDVOSB", "sdvosb set-aside", "Service-Disabled Veteran-Owned Small Business"},
			[]string{"SDVOSB"},
		},
		{"unknown passes through trimmed", []string{"  Tribal 8(a) Priority  "}, []string{"Tribal 8(a) Priority"}},
		{"blanks dropped", []string{"", "   ", "HUBZone"}, []string{"HUBZone"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeSetAsides(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("NormalizeSetAsides(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
