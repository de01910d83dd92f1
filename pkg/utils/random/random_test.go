package random_test

import (
	"strings"
	"testing"

	"ohhell-service/pkg/utils/random"
)

func TestCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := random.Code(4)
		if len(code) != 4 {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		if strings.ContainsAny(code, "IO0123456789") {
			t.Fatalf("code %q contains an ambiguous character", code)
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("code %q is not uppercase", code)
		}
	}
}

func TestNumeric(t *testing.T) {
	n := random.Numeric(6)
	if len(n) != 6 {
		t.Fatalf("numeric code %q has length %d", n, len(n))
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			t.Fatalf("numeric code %q contains %q", n, r)
		}
	}
}

func TestZeroLength(t *testing.T) {
	if random.Code(0) != "" {
		t.Fatal("zero-length code not empty")
	}
	if random.Code(-1) != "" {
		t.Fatal("negative-length code not empty")
	}
}
