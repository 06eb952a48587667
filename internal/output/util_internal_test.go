//go:build unit

package output

import "testing"

func TestIntToString(t *testing.T) {
	if got, want := intToString(42), "42"; got != want {
		t.Errorf("intToString(42) = %q, want %q", got, want)
	}
}

func TestBoolToString(t *testing.T) {
	if got, want := boolToString(true), "true"; got != want {
		t.Errorf("boolToString(true) = %q, want %q", got, want)
	}
	if got, want := boolToString(false), "false"; got != want {
		t.Errorf("boolToString(false) = %q, want %q", got, want)
	}
}

func TestDecimalFromInt(t *testing.T) {
	if got, want := decimalFromInt(35).String(), "35"; got != want {
		t.Errorf("decimalFromInt(35) = %q, want %q", got, want)
	}
}

func TestExtensionFor(t *testing.T) {
	for name, want := range map[string]string{"console": "txt", "console-lite": "txt", "detailed-csv": "csv", "csv": "csv", "html": "html", "json": "json"} {
		if got := extensionFor(name); got != want {
			t.Errorf("extensionFor(%q) = %q, want %q", name, got, want)
		}
	}
}
