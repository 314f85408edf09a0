package field

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Type
		wantErr bool
	}{
		{name: "Success: exact name", in: "UInt", want: FTUInt},
		{name: "Success: lower case", in: "formid", want: FTFormID},
		{name: "Success: upper case", in: "LSTRING", want: FTLString},
		{name: "Success: str4", in: "str4", want: FTStr4},
		{name: "Error: unknown name", in: "uint64", wantErr: true},
		{name: "Error: Unknown is not parseable", in: "Unknown", wantErr: true},
	}

	for _, test := range tests {
		got, err := Parse(test.in)
		switch {
		case err == nil && test.wantErr:
			t.Errorf("TestParse(%s): got err == nil, want err != nil", test.name)
			continue
		case err != nil && !test.wantErr:
			t.Errorf("TestParse(%s): got err == %s, want err == nil", test.name, err)
			continue
		case err != nil:
			continue
		}
		if got != test.want {
			t.Errorf("TestParse(%s): got %v, want %v", test.name, got, test.want)
		}
	}
}

func TestWidth(t *testing.T) {
	tests := []struct {
		ft   Type
		want int
	}{
		{FTByte, 1},
		{FTSByte, 1},
		{FTShort, 2},
		{FTUShort, 2},
		{FTUInt, 4},
		{FTInt, 4},
		{FTFloat, 4},
		{FTFormID, 4},
		{FTStr4, 4},
		{FTString, 0},
		{FTBString, 0},
		{FTIString, 0},
		{FTLString, 0},
	}

	for _, test := range tests {
		if got := Width(test.ft); got != test.want {
			t.Errorf("TestWidth(%s): got %d, want %d", test.ft, got, test.want)
		}
	}
}

func TestString(t *testing.T) {
	if got := FTBString.String(); got != "BString" {
		t.Errorf("TestString: got %q, want %q", got, "BString")
	}
	if got := Type(99).String(); got != "Type(99)" {
		t.Errorf("TestString(out of range): got %q, want %q", got, "Type(99)")
	}
	if Type(99).Valid() || FTUnknown.Valid() {
		t.Errorf("TestString: Valid() accepted an invalid type")
	}
}
