package skeincoin

import (
	"encoding/hex"
	"testing"
)

func Test_uint256_String(t *testing.T) {

	// Display order is the reverse of storage order.
	var u Uint256
	u[31] = 0xab
	u[0] = 0x01
	want := "ab" + "0000000000000000000000000000000000000000000000000000000000" + "0001"
	if got := u.String(); got != want {
		t.Errorf("String() = %s", got)
	}

	back, err := Uint256FromString(u.String())
	if err != nil {
		t.Fatalf("Uint256FromString: %v", err)
	}
	if back != u {
		t.Error("string round trip changed the value")
	}

	if _, err := Uint256FromString("abcd"); err == nil {
		t.Error("short string accepted")
	}
}

func Test_hashes(t *testing.T) {

	h := ShaSha256([]byte("hello"))
	if got := hex.EncodeToString(h[:]); got != "9595c9df90075148eb06860365df33584b75bff782a510c6cd4883a419833d50" {
		t.Errorf("ShaSha256(hello) = %s", got)
	}

	if SkeinSha256([]byte("hello")) == h {
		t.Error("SkeinSha256 == ShaSha256")
	}
	if SkeinSha256([]byte("hello")) != SkeinSha256([]byte("hello")) {
		t.Error("SkeinSha256 not deterministic")
	}
	if SkeinSha256([]byte("hellp")) == SkeinSha256([]byte("hello")) {
		t.Error("SkeinSha256 ignores input")
	}
}
