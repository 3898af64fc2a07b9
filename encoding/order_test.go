package encoding

import "testing"

func TestParseByteOrder(t *testing.T) {
	tests := []struct {
		name      string
		registers int
		want      ByteOrder
		wantErr   bool
	}{
		{"ABCD", 2, ABCD, false},
		{"dcba", 2, DCBA, false},
		{" ABCDEFGH ", 4, ABCDEFGH, false},
		{"HGFEDCBA", 4, HGFEDCBA, false},
		{"ABCD", 4, 0, true},
		{"HGFEDCBA", 2, 0, true},
		{"BADC", 2, 0, true},
		{"ABCD", 3, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseByteOrder(tt.name, tt.registers)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseByteOrder(%q, %d) error = %v", tt.name, tt.registers, err)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseByteOrder(%q, %d) = %v, want %v", tt.name, tt.registers, got, tt.want)
		}
	}
}

func TestByteOrderName(t *testing.T) {
	if got := DCBA.Name(4); got != "HGFEDCBA" {
		t.Fatalf("DCBA.Name(4) = %q", got)
	}
	if got := ABCD.String(); got != "ABCD" {
		t.Fatalf("ABCD.String() = %q", got)
	}
	if got := ByteOrder(7).String(); got != "ByteOrder(7)" {
		t.Fatalf("ByteOrder(7).String() = %q", got)
	}
}
