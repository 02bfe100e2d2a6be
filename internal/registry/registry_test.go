package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryOrderPreserved(t *testing.T) {
	r := New()
	macs := []string{
		"aa:bb:cc:dd:ee:01",
		"aa:bb:cc:dd:ee:03",
		"aa:bb:cc:dd:ee:02",
	}
	for _, mac := range macs {
		r.Put(mac, &Instance{Name: ""})
	}
	require.Equal(t, macs, r.MACs())

	// Replacing keeps the original position.
	r.Put("aa:bb:cc:dd:ee:03", &Instance{Name: "radish"})
	require.Equal(t, macs, r.MACs())

	require.True(t, r.Delete("aa:bb:cc:dd:ee:03"))
	require.Equal(t, []string{"aa:bb:cc:dd:ee:01", "aa:bb:cc:dd:ee:02"}, r.MACs())
	require.False(t, r.Delete("aa:bb:cc:dd:ee:03"))
}

func TestRegistryJSONRoundTrip(t *testing.T) {
	r := New()
	r.Put("aa:bb:cc:dd:ee:02", &Instance{
		Name:    "carrot",
		IPv4:    "192.0.2.10",
		IPv6LLA: "fe80::a8bb:ccff:fedd:ee02",
	})
	r.Put("aa:bb:cc:dd:ee:01", &Instance{
		Name:    "",
		IPv6GUA: "2001:db8::1",
		IPv6ULA: "fdb8:7a32:ffb5::1",
		IPv6LLA: "fe80::a8bb:ccff:fedd:ee01",
	})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var back Registry
	require.NoError(t, json.Unmarshal(data, &back))

	// Insertion order survives even though the keys sort the other way.
	require.Equal(t, []string{"aa:bb:cc:dd:ee:02", "aa:bb:cc:dd:ee:01"}, back.MACs())
	require.Equal(t, r.Get("aa:bb:cc:dd:ee:01"), back.Get("aa:bb:cc:dd:ee:01"))
	require.Equal(t, r.Get("aa:bb:cc:dd:ee:02"), back.Get("aa:bb:cc:dd:ee:02"))
}

func TestRegistryJSONOmitsEmptyAddresses(t *testing.T) {
	r := New()
	r.Put("aa:bb:cc:dd:ee:ff", &Instance{Name: "", IPv6LLA: "fe80::a8bb:ccff:fedd:eeff"})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	rec := raw["aa:bb:cc:dd:ee:ff"]
	require.Contains(t, rec, "name") // name is always present, even when empty
	require.Contains(t, rec, "ipv6_lla")
	require.NotContains(t, rec, "ipv4")
	require.NotContains(t, rec, "ipv6_gua")
	require.NotContains(t, rec, "ipv6_ula")
}

func TestRegistryUnmarshalRejectsGarbage(t *testing.T) {
	var r Registry
	require.Error(t, json.Unmarshal([]byte(`[]`), &r))
	require.Error(t, json.Unmarshal([]byte(`{"aa:bb": 5}`), &r))
	require.Error(t, json.Unmarshal([]byte(`{`), &r))
}
