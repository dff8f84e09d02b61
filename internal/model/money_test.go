package model

import "testing"

func TestParseCents(t *testing.T) {
	cases := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{"300.00", 30000, false},
		{"250.25", 25025, false},
		{"0.1", 10, false},
		{"7", 700, false},
		{"0", 0, false},
		{"100.125", 0, true},
		{"-5.00", 0, true},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, c := range cases {
		got, err := ParseCents(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseCents(%q) expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCents(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseCents(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCentsString(t *testing.T) {
	cases := []struct {
		in   Cents
		want string
	}{
		{30000, "300.00"},
		{25025, "250.25"},
		{5, "0.05"},
		{0, "0.00"},
		{-4975, "-49.75"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("Cents(%d).String() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCentsJSONRoundTrip(t *testing.T) {
	var c Cents
	if err := c.UnmarshalJSON([]byte(`"550.25"`)); err != nil {
		t.Fatalf("unmarshal string form: %v", err)
	}
	if c != 55025 {
		t.Fatalf("got %d, want 55025", c)
	}

	if err := c.UnmarshalJSON([]byte(`300`)); err != nil {
		t.Fatalf("unmarshal number form: %v", err)
	}
	if c != 30000 {
		t.Fatalf("got %d, want 30000", c)
	}

	data, err := Cents(55025).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"550.25"` {
		t.Fatalf("marshal = %s, want \"550.25\"", data)
	}
}
