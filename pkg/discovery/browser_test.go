package discovery

import "testing"

func TestMergeAddressesDeduplicates(t *testing.T) {
	got := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "10.0.0.2"})
	want := []string{"10.0.0.1", "10.0.0.2"}
	if len(got) != len(want) {
		t.Fatalf("mergeAddresses() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mergeAddresses()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRemoveAddress(t *testing.T) {
	got := removeAddress([]string{"10.0.0.1", "10.0.0.2"}, "10.0.0.1")
	if len(got) != 1 || got[0] != "10.0.0.2" {
		t.Errorf("removeAddress() = %v, want [10.0.0.2]", got)
	}
}

func TestRemoveAddressNotPresent(t *testing.T) {
	got := removeAddress([]string{"10.0.0.1"}, "10.0.0.9")
	if len(got) != 1 || got[0] != "10.0.0.1" {
		t.Errorf("removeAddress() = %v, want unchanged", got)
	}
}

func TestDefaultBrowserConfigHasNoInterfaceRestriction(t *testing.T) {
	cfg := DefaultBrowserConfig()
	iface, err := cfg.resolveInterface()
	if err != nil {
		t.Fatalf("resolveInterface() error: %v", err)
	}
	if iface != nil {
		t.Errorf("resolveInterface() = %v, want nil", iface)
	}
}
