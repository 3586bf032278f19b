package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	want := New(2025, time.July, 1)
	for _, in := range []string{"2025-07-01", "2025-7-1", "2025/07/01", "2025/7/1", "2025.07.01", " 2025/07/01\n"} {
		got, err := Parse(in)
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("Parse(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "07/01/2025", "yesterday"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected an error", in)
		}
	}
}

func TestNewNormalizes(t *testing.T) {
	if got, want := New(2025, time.February, 30), New(2025, time.March, 2); got != want {
		t.Errorf("New(2025, 2, 30) = %v, want %v", got, want)
	}
}

func TestFormat(t *testing.T) {
	d := New(2005, time.February, 9)
	if got, want := d.Format(SlashFormat), "2005/02/09"; got != want {
		t.Errorf("Format(SlashFormat) = %q, want %q", got, want)
	}
	if got, want := d.String(), "2005-02-09"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIsZero(t *testing.T) {
	if !(Date{}).IsZero() {
		t.Errorf("Date{}.IsZero() = false, want true")
	}
	if New(2025, 1, 1).IsZero() {
		t.Errorf("New(2025, 1, 1).IsZero() = true, want false")
	}
}
