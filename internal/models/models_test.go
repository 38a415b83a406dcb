package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseReleaseDate(t *testing.T) {
	t.Run("Day Precision", func(t *testing.T) {
		date, precision, err := ParseReleaseDate("2024-05-01", PrecisionDay)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if precision != PrecisionDay {
			t.Errorf("expected day precision, got %s", precision)
		}
		if !date.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date %v", date)
		}
	})

	t.Run("Month Precision Pins First Day", func(t *testing.T) {
		date, _, err := ParseReleaseDate("2024-05", PrecisionMonth)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if date.Day() != 1 {
			t.Errorf("expected first of month, got day %d", date.Day())
		}
	})

	t.Run("Year Precision Pins January First", func(t *testing.T) {
		date, _, err := ParseReleaseDate("2024", PrecisionYear)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if date.Month() != time.January || date.Day() != 1 {
			t.Errorf("expected 1 January, got %v", date)
		}
	})

	t.Run("Inferred Precision", func(t *testing.T) {
		cases := map[string]DatePrecision{
			"2024-05-01": PrecisionDay,
			"2024-05":    PrecisionMonth,
			"2024":       PrecisionYear,
		}
		for value, want := range cases {
			_, precision, err := ParseReleaseDate(value, "")
			if err != nil {
				t.Fatalf("expected no error for %q, got %v", value, err)
			}
			if precision != want {
				t.Errorf("expected %s precision for %q, got %s", want, value, precision)
			}
		}
	})

	t.Run("Rejects Garbage", func(t *testing.T) {
		for _, value := range []string{"", "not-a-date", "05-01-2024", "2024-13"} {
			if _, _, err := ParseReleaseDate(value, ""); err == nil {
				t.Errorf("expected error for %q", value)
			}
		}
	})
}

func TestReleaseType(t *testing.T) {
	if !ReleaseSingle.Preferred(ReleaseAlbum) {
		t.Error("single should be preferred over album")
	}
	if ReleaseAlbum.Preferred(ReleaseSingle) {
		t.Error("album should not be preferred over single")
	}
	if ReleaseSingle.Preferred(ReleaseSingle) {
		t.Error("equal types should not prefer each other")
	}
}

func TestWindowState(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		cases := map[WindowState]string{
			WindowNew:      "new",
			WindowUpcoming: "upcoming",
			WindowStale:    "stale",
		}
		for state, want := range cases {
			if state.String() != want {
				t.Errorf("expected %q, got %q", want, state.String())
			}
		}
	})

	t.Run("JSON Round Trip", func(t *testing.T) {
		data, err := json.Marshal(WindowUpcoming)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(data) != `"upcoming"` {
			t.Errorf("expected \"upcoming\", got %s", data)
		}

		var state WindowState
		if err := json.Unmarshal(data, &state); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if state != WindowUpcoming {
			t.Errorf("expected WindowUpcoming, got %v", state)
		}
	})

	t.Run("Rejects Unknown Name", func(t *testing.T) {
		var state WindowState
		if err := json.Unmarshal([]byte(`"someday"`), &state); err == nil {
			t.Error("expected error for unknown window state")
		}
	})
}

func TestCacheRecordValid(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	record := &CacheRecord{
		Key:       "catalog:v1:a1",
		StoredAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(time.Hour),
	}

	if !record.Valid(now) {
		t.Error("expected record to be valid before expiry")
	}
	if record.Valid(now.Add(time.Hour)) {
		t.Error("expected record to be invalid at expiry")
	}
	if record.Valid(now.Add(2 * time.Hour)) {
		t.Error("expected record to be invalid after expiry")
	}
}
