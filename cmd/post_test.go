package cmd

import "testing"

func TestLegList_Set(t *testing.T) {
	testCases := []struct {
		name    string
		value   string
		want    leg
		wantErr bool
	}{
		{"plain leg", "assets:cash=100", leg{account: "assets:cash", amount: "100"}, false},
		{"asset-tagged leg", "assets:wallet:main=0.5@BTC", leg{account: "assets:wallet:main", amount: "0.5", asset: "BTC"}, false},
		{"missing amount", "assets:cash=", leg{}, true},
		{"missing separator", "assets:cash 100", leg{}, true},
		{"missing account", "=100", leg{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var l legList
			err := l.Set(tc.value)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Set(%q): want error", tc.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set(%q) error = %v", tc.value, err)
			}
			if len(l) != 1 || l[0] != tc.want {
				t.Errorf("Set(%q) = %+v, want %+v", tc.value, l, tc.want)
			}
		})
	}
}

func TestChart_ResolveAccount(t *testing.T) {
	testCases := []struct {
		code string
		want bool
	}{
		{"assets:wallet:main", true},
		{"income:realized-gains", true},
		{"equity", true},
		{"", false},
		{"Assets:Wallet", false},
		{"assets::wallet", false},
		{"assets:wallet:", false},
	}

	var c chart
	for _, tc := range testCases {
		if got := c.ResolveAccount(tc.code); got != tc.want {
			t.Errorf("ResolveAccount(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
