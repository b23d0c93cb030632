package tiers

import "testing"

func TestForUnknownFallsBackToFree(t *testing.T) {
	if got := For(Tier("platinum")); got != table[Free] {
		t.Errorf("unknown tier limits = %+v, want free tier limits", got)
	}
}

func TestPaid(t *testing.T) {
	if Paid(Free) {
		t.Error("free must not require a receipt")
	}
	if !Paid(Plus) || !Paid(Pro) {
		t.Error("plus and pro must require a receipt")
	}
	if Paid(Tier("platinum")) {
		t.Error("unknown tiers are not purchasable")
	}
}

func TestUnlimitedStorageIsZeroCap(t *testing.T) {
	if For(Pro).StorageCap != 0 {
		t.Errorf("pro storage cap = %d, want 0 (unlimited)", For(Pro).StorageCap)
	}
	if For(Free).StorageCap != 5 || For(Plus).StorageCap != 50 {
		t.Error("free/plus caps must stay 5 and 50")
	}
}
