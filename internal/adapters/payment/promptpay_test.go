package payment

import (
	"strings"
	"testing"
)

func TestCRC16_KnownVector(t *testing.T) {
	// Standard CRC-16/CCITT-FALSE check value.
	if got := crc16("123456789"); got != 0x29B1 {
		t.Errorf("crc16 = %#04X, want 0x29B1", got)
	}
}

func TestBuildPayload_StaticPhone(t *testing.T) {
	got, err := BuildPayload("0812345678", 0)
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}
	want := "00020101021129370016A000000677010111011300668123456785802TH530376463045D82"
	if got != want {
		t.Errorf("payload =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildPayload_DynamicAmount(t *testing.T) {
	got, err := BuildPayload("081-234-5678", 42050)
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}
	want := "00020101021229370016A000000677010111011300668123456785802TH53037645406420.506304FC9C"
	if got != want {
		t.Errorf("payload =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildPayload_NationalID(t *testing.T) {
	got, err := BuildPayload("1234567890129", 0)
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}
	want := "00020101021129370016A000000677010111021312345678901295802TH53037646304ED6C"
	if got != want {
		t.Errorf("payload =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildPayload_EWallet(t *testing.T) {
	got, err := BuildPayload("123456789012345", 0)
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}
	if !strings.Contains(got, "0315123456789012345") {
		t.Errorf("payload %q should carry e-wallet subfield", got)
	}
}

func TestBuildPayload_BadTarget(t *testing.T) {
	if _, err := BuildPayload("12345", 0); err != ErrBadTarget {
		t.Errorf("error = %v, want ErrBadTarget", err)
	}
}

func TestBuildPayload_AmountFormatting(t *testing.T) {
	got, err := BuildPayload("0812345678", 500)
	if err != nil {
		t.Fatalf("BuildPayload failed: %v", err)
	}
	if !strings.Contains(got, "54045.00") {
		t.Errorf("payload %q should carry amount 5.00", got)
	}
}
