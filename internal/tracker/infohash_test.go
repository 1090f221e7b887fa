package tracker

import "testing"

func TestParseInfoHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "0102030405060708090a0b0c0d0e0f1011121314"},
		{name: "uppercase", input: "0102030405060708090A0B0C0D0E0F1011121314"},
		{name: "too short", input: "0102", wantErr: true},
		{name: "too long", input: "0102030405060708090a0b0c0d0e0f101112131415", wantErr: true},
		{name: "not hex", input: "zz02030405060708090a0b0c0d0e0f1011121314", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseInfoHash(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := InfoHash{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
			if h != want {
				t.Errorf("ParseInfoHash(%q) = %v, want %v", tt.input, h, want)
			}
		})
	}
}

func TestInfoHashString(t *testing.T) {
	h := InfoHash{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	want := "0102030405060708090a0b0c0d0e0f1011121314"
	if h.String() != want {
		t.Errorf("String() = %q, want %q", h.String(), want)
	}
}
