package application

import "testing"

func TestParseConnectionConfig(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"query encoded", "subdomain=acme&region=eu%2Dwest", map[string]string{"subdomain": "acme", "region": "eu-west"}},
		{"json object", `{"subdomain":"acme","port":8443,"tls":true}`, map[string]string{"subdomain": "acme", "port": "8443", "tls": "true"}},
		{"large and fractional numbers", `{"accountId":12345678901234567890,"ratio":0.1}`, map[string]string{"accountId": "12345678901234567890", "ratio": "0.1"}},
		{"malformed json", `{"subdomain":`, map[string]string{}},
		{"trailing json", `{"subdomain":"acme"} {"x":1}`, map[string]string{}},
		{"malformed query", "a=%zz", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseConnectionConfig(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Fatalf("expected %s=%s, got %q", k, v, got[k])
				}
			}
		})
	}
}
