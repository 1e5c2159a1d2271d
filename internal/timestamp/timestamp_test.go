package timestamp

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalize_NilReturnsSentinel(t *testing.T) {
	got := Normalize(nil)
	if !got.Equal(Sentinel) {
		t.Fatalf("Normalize(nil) = %v, want sentinel %v", got, Sentinel)
	}
}

func TestNormalize_TimePassesThrough(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	got := Normalize(now)
	if !got.Equal(now) {
		t.Fatalf("Normalize(time.Time) = %v, want %v", got, now)
	}
}

func TestNormalize_RFC3339String(t *testing.T) {
	got := Normalize("2025-06-01T12:30:00Z")
	want := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Normalize(string) = %v, want %v", got, want)
	}
}

func TestNormalize_UnparsableStringEqualsNil(t *testing.T) {
	// Нечитаемая строка и отсутствующее значение обязаны давать одну и ту же метку.
	fromBad := Normalize("not-a-date")
	fromNil := Normalize(nil)
	if !fromBad.Equal(fromNil) {
		t.Fatalf("Normalize(bad string) = %v, Normalize(nil) = %v, want equal", fromBad, fromNil)
	}
	if !fromBad.Equal(Sentinel) {
		t.Fatalf("Normalize(bad string) = %v, want sentinel", fromBad)
	}
}

func TestNormalize_NonRFC3339StringsReturnSentinel(t *testing.T) {
	// RFC 3339 — единственный принимаемый строковый формат. Остальные
	// профили ISO 8601 трактуются как нечитаемые: такие записи считаются
	// «очень старыми» и не попадают ни в одно окно отчёта.
	// Только дата, без зоны, смещение без двоеточия, локальный формат.
	for _, s := range []string{
		"2025-06-01",
		"2025-06-01T12:30:00",
		"2025-06-01T12:30:00+0300",
		"01.06.2025 12:30",
	} {
		if got := Normalize(s); !got.Equal(Sentinel) {
			t.Fatalf("Normalize(%q) = %v, want sentinel", s, got)
		}
	}
}

func TestNormalize_BoxedAccessor(t *testing.T) {
	u := Unix{Seconds: 1_700_000_000, Nanos: 500_000_000}
	got := Normalize(u)
	want := time.Unix(1_700_000_000, 500_000_000).UTC()
	if !got.Equal(want) {
		t.Fatalf("Normalize(Unix) = %v, want %v", got, want)
	}
}

func TestNormalize_UnknownShapeReturnsSentinel(t *testing.T) {
	for _, v := range []any{42, 3.14, true, map[string]any{"x": 1}} {
		if got := Normalize(v); !got.Equal(Sentinel) {
			t.Fatalf("Normalize(%v) = %v, want sentinel", v, got)
		}
	}
}

func TestRaw_UnmarshalString(t *testing.T) {
	var r Raw
	if err := json.Unmarshal([]byte(`"2025-01-15T08:00:00Z"`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	if !r.Time().Equal(want) {
		t.Fatalf("Time() = %v, want %v", r.Time(), want)
	}
	if r.IsZero() {
		t.Fatalf("IsZero() = true for present value")
	}
}

func TestRaw_UnmarshalBoxedObject(t *testing.T) {
	var r Raw
	if err := json.Unmarshal([]byte(`{"seconds":1700000000,"nanos":0}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Unix(1_700_000_000, 0).UTC()
	if !r.Time().Equal(want) {
		t.Fatalf("Time() = %v, want %v", r.Time(), want)
	}
}

func TestRaw_UnmarshalNull(t *testing.T) {
	var r Raw
	if err := json.Unmarshal([]byte(`null`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !r.IsZero() {
		t.Fatalf("IsZero() = false for null")
	}
	if !r.Time().Equal(Sentinel) {
		t.Fatalf("Time() = %v, want sentinel", r.Time())
	}
}

func TestRaw_MarshalRoundTrip(t *testing.T) {
	r := FromTime(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-01T10:00:00Z"` {
		t.Fatalf("marshal = %s, want RFC 3339 string", b)
	}

	var back Raw
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Time().Equal(r.Time()) {
		t.Fatalf("round trip: got %v, want %v", back.Time(), r.Time())
	}
}

func TestRaw_MarshalNullWhenAbsent(t *testing.T) {
	var r Raw
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "null" {
		t.Fatalf("marshal = %s, want null", b)
	}
}
