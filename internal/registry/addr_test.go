package registry

import (
	"net/netip"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		addr string
		want Class
	}{
		{"192.168.1.10", ClassIPv4},
		{"::ffff:192.168.1.10", ClassIPv4},
		{"2001:db8::1", ClassGUA},
		{"2a00:1450:400f:80d::200e", ClassGUA},
		{"fdb8:7a32:ffb5::1234", ClassULA},
		{"fc00::1", ClassULA},
		{"fe80::a8bb:ccff:fedd:eeff", ClassLLA},
		{"ff02::1", ClassNone}, // multicast
		{"::1", ClassNone},     // loopback
		{"::", ClassNone},      // unspecified
	}
	for _, tc := range tests {
		got := Classify(netip.MustParseAddr(tc.addr))
		if got != tc.want {
			t.Errorf("Classify(%s) = %v, want %v", tc.addr, got, tc.want)
		}
	}

	if Classify(netip.Addr{}) != ClassNone {
		t.Error("Classify(zero) should be ClassNone")
	}
}

func TestLinkLocalFromMAC(t *testing.T) {
	tests := []struct {
		mac  string
		want string
	}{
		// U/L bit of the first octet is inverted, ff:fe goes in the middle.
		{"aa:bb:cc:dd:ee:ff", "fe80::a8bb:ccff:fedd:eeff"},
		{"00:00:5e:00:53:01", "fe80::200:5eff:fe00:5301"},
		{"02:00:00:00:00:01", "fe80::ff:fe00:1"},
	}
	for _, tc := range tests {
		got, err := LinkLocalFromMAC(tc.mac)
		if err != nil {
			t.Fatalf("LinkLocalFromMAC(%s): %v", tc.mac, err)
		}
		if got.String() != tc.want {
			t.Errorf("LinkLocalFromMAC(%s) = %s, want %s", tc.mac, got, tc.want)
		}
	}

	for _, bad := range []string{"", "not-a-mac", "aa:bb:cc:dd:ee", "02:00:00:00:00:00:00:01"} {
		if _, err := LinkLocalFromMAC(bad); err == nil {
			t.Errorf("LinkLocalFromMAC(%q): expected error", bad)
		}
	}
}
