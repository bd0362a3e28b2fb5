package main

import (
	"testing"
)

// ---------- validatePinOverrides ----------

func TestValidatePinOverrides_AllZero(t *testing.T) {
	if err := validatePinOverrides(0, 0, 0); err != nil {
		t.Errorf("all zeros should be valid (use config defaults), got: %v", err)
	}
}

func TestValidatePinOverrides_Valid(t *testing.T) {
	cases := []struct {
		name             string
		base, top, laser int
	}{
		{"base_only", 5, 0, 0},
		{"top_only", 0, 6, 0},
		{"laser_only", 0, 0, 13},
		{"all_set", 5, 6, 13},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validatePinOverrides(tc.base, tc.top, tc.laser); err != nil {
				t.Errorf("expected valid, got: %v", err)
			}
		})
	}
}

func TestValidatePinOverrides_Negative(t *testing.T) {
	cases := []struct {
		name             string
		base, top, laser int
	}{
		{"base_negative", -1, 0, 0},
		{"top_negative", 0, -1, 0},
		{"laser_negative", 0, 0, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validatePinOverrides(tc.base, tc.top, tc.laser); err == nil {
				t.Error("expected error for negative channel, got nil")
			}
		})
	}
}

// ---------- webPortFlag ----------

func TestWebPortFlag_EmptyString(t *testing.T) {
	w := &webPortFlag{defaultPort: 8080}
	if err := w.Set(""); err != nil {
		t.Fatalf("Set(\"\") error: %v", err)
	}
	if w.port() != 8080 {
		t.Errorf("expected default port 8080, got %d", w.port())
	}
}

func TestWebPortFlag_ValidPorts(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"8080", 8080},
		{"1", 1},
		{"65535", 65535},
		{"3000", 3000},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			w := &webPortFlag{defaultPort: 8080}
			if err := w.Set(tc.input); err != nil {
				t.Fatalf("Set(%q) error: %v", tc.input, err)
			}
			if w.port() != tc.want {
				t.Errorf("port() = %d, want %d", w.port(), tc.want)
			}
		})
	}
}

func TestWebPortFlag_InvalidPorts(t *testing.T) {
	cases := []string{"0", "65536", "-1", "abc", "8080.5"}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			w := &webPortFlag{defaultPort: 8080}
			if err := w.Set(input); err == nil {
				t.Errorf("Set(%q) should fail, got nil", input)
			}
		})
	}
}

func TestWebPortFlag_String(t *testing.T) {
	w := &webPortFlag{val: 0}
	if s := w.String(); s != "0" {
		t.Errorf("String() = %q, want \"0\"", s)
	}
	w.val = 9090
	if s := w.String(); s != "9090" {
		t.Errorf("String() = %q, want \"9090\"", s)
	}
}
