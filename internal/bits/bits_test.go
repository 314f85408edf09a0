package bits

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestSetIsSet(t *testing.T) {
	var v uint8
	v = Set(v, 0)
	v = Set(v, 7)
	if v != 0x81 {
		t.Errorf("TestSetIsSet: got 0x%X, want 0x81", v)
	}
	for i := 0; i < 8; i++ {
		want := i == 0 || i == 7
		if got := IsSet(v, i); got != want {
			t.Errorf("TestSetIsSet: IsSet(0x81, %d) = %v, want %v", i, got, want)
		}
	}
}

func TestFits(t *testing.T) {
	tests := []struct {
		name  string
		v     uint32
		width int
		want  bool
	}{
		{name: "Success: zero", v: 0, width: 8, want: true},
		{name: "Success: top bit of a byte", v: 0x80, width: 8, want: true},
		{name: "Success: over a byte", v: 0x100, width: 8, want: false},
		{name: "Success: full word", v: 0xFFFFFFFF, width: 32, want: true},
	}
	for _, test := range tests {
		if got := Fits(test.v, test.width); got != test.want {
			t.Errorf("TestFits(%s): got %v, want %v", test.name, got, test.want)
		}
	}
}

func TestIndexes(t *testing.T) {
	if diff := pretty.Compare([]int{0, 3, 31}, Indexes(uint32(0x80000009))); diff != "" {
		t.Errorf("TestIndexes: -want/+got:\n%s", diff)
	}
	if got := Indexes(uint16(0)); len(got) != 0 {
		t.Errorf("TestIndexes(0): got %v, want none", got)
	}
}
