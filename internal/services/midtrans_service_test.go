package services

import "testing"

func TestComputeSignature(t *testing.T) {
	// SHA512("maintenance-7-1700000000" + "200" + "30.00" + "test-server-key")
	want := "0aaf1df9c587d8d536dbe5eb9fd9503a61232c72cfc8b15bf0f8dac779c2ce1224912476b2ab5dd9919eb485994a005f9a775d80ee43117af928a796700ed4de"

	got := ComputeSignature("maintenance-7-1700000000", "200", "30.00", "test-server-key")
	if got != want {
		t.Errorf("ComputeSignature = %q; want %q", got, want)
	}
}

func TestVerifySignature(t *testing.T) {
	s := &MidtransService{serverKey: "test-server-key"}

	valid := ComputeSignature("maintenance-7-1700000000", "200", "30.00", "test-server-key")

	if !s.VerifySignature("maintenance-7-1700000000", "200", "30.00", valid) {
		t.Error("valid signature rejected")
	}
	if s.VerifySignature("maintenance-7-1700000000", "200", "30.00", "bogus") {
		t.Error("bogus signature accepted")
	}
	if s.VerifySignature("maintenance-8-1700000000", "200", "30.00", valid) {
		t.Error("signature accepted for a different order")
	}
}
