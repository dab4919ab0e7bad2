package client

import (
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

// item builds a forecast step with all temperature fields set.
func item(dtTxt string, temp, tmin, tmax float64, desc string) forecastItem {
	var it forecastItem
	it.DtTxt = dtTxt
	it.Main.Temp = fp(temp)
	it.Main.TempMin = fp(tmin)
	it.Main.TempMax = fp(tmax)
	if desc != "" {
		it.Weather = []struct {
			Description string `json:"description"`
		}{{Description: desc}}
	}
	return it
}

var testNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func TestSummarizeDaily_MinMaxAcrossItems(t *testing.T) {
	items := []forecastItem{
		item("2024-01-16 03:00:00", 24, 23, 25, "light rain"),
		item("2024-01-16 12:00:00", 31, 30, 32, "clear sky"),
		item("2024-01-16 21:00:00", 27, 26, 28, "few clouds"),
	}

	days := summarizeDaily(items, testNow, 3)
	if len(days) != 1 {
		t.Fatalf("len(days) = %d, want 1", len(days))
	}
	d := days[0]
	if d.TempMin == nil || *d.TempMin != 23 {
		t.Errorf("TempMin = %v, want 23", d.TempMin)
	}
	if d.TempMax == nil || *d.TempMax != 32 {
		t.Errorf("TempMax = %v, want 32", d.TempMax)
	}
	if d.Conditions != "Light rain" {
		t.Errorf("Conditions = %q, want first item's description capitalized", d.Conditions)
	}
}

func TestSummarizeDaily_SkipsTodayAndPast(t *testing.T) {
	items := []forecastItem{
		item("2024-01-14 12:00:00", 20, 19, 21, "past"),
		item("2024-01-15 12:00:00", 22, 21, 23, "today"),
		item("2024-01-16 12:00:00", 24, 23, 25, "tomorrow"),
	}

	days := summarizeDaily(items, testNow, 3)
	if len(days) != 1 {
		t.Fatalf("len(days) = %d, want 1", len(days))
	}
	if days[0].Date != "2024-01-16" {
		t.Errorf("Date = %q, want 2024-01-16", days[0].Date)
	}
}

func TestSummarizeDaily_CapsAtMaxDays(t *testing.T) {
	items := []forecastItem{
		item("2024-01-16 12:00:00", 24, 23, 25, "a"),
		item("2024-01-17 12:00:00", 24, 23, 25, "b"),
		item("2024-01-18 12:00:00", 24, 23, 25, "c"),
		item("2024-01-19 12:00:00", 24, 23, 25, "d"),
		item("2024-01-20 12:00:00", 24, 23, 25, "e"),
	}

	days := summarizeDaily(items, testNow, 3)
	if len(days) != 3 {
		t.Fatalf("len(days) = %d, want 3", len(days))
	}
	want := []string{"2024-01-16", "2024-01-17", "2024-01-18"}
	for i, d := range days {
		if d.Date != want[i] {
			t.Errorf("days[%d].Date = %q, want %q", i, d.Date, want[i])
		}
	}
}

func TestSummarizeDaily_FallsBackToTemp(t *testing.T) {
	var it forecastItem
	it.DtTxt = "2024-01-16 12:00:00"
	it.Main.Temp = fp(26.04)

	days := summarizeDaily([]forecastItem{it}, testNow, 3)
	if len(days) != 1 {
		t.Fatalf("len(days) = %d, want 1", len(days))
	}
	if days[0].TempMin == nil || *days[0].TempMin != 26.0 {
		t.Errorf("TempMin = %v, want 26.0 (rounded from temp)", days[0].TempMin)
	}
	if days[0].TempMax == nil || *days[0].TempMax != 26.0 {
		t.Errorf("TempMax = %v, want 26.0 (rounded from temp)", days[0].TempMax)
	}
}

func TestSummarizeDaily_NoTemperatures(t *testing.T) {
	var it forecastItem
	it.DtTxt = "2024-01-16 12:00:00"

	days := summarizeDaily([]forecastItem{it}, testNow, 3)
	if len(days) != 1 {
		t.Fatalf("len(days) = %d, want 1", len(days))
	}
	if days[0].TempMin != nil || days[0].TempMax != nil {
		t.Errorf("temps = %v/%v, want nil/nil", days[0].TempMin, days[0].TempMax)
	}
	if days[0].Conditions != "Unknown" {
		t.Errorf("Conditions = %q, want Unknown", days[0].Conditions)
	}
}

func TestSummarizeDaily_SkipsMalformedItems(t *testing.T) {
	var noDate forecastItem
	noDate.Main.Temp = fp(20)
	var badDate forecastItem
	badDate.DtTxt = "not-a-date 12:00:00"
	badDate.Main.Temp = fp(20)

	items := []forecastItem{
		noDate,
		badDate,
		item("2024-01-16 12:00:00", 24, 23, 25, "clear sky"),
	}

	days := summarizeDaily(items, testNow, 3)
	if len(days) != 1 {
		t.Fatalf("len(days) = %d, want 1", len(days))
	}
	if days[0].Date != "2024-01-16" {
		t.Errorf("Date = %q, want 2024-01-16", days[0].Date)
	}
}

func TestSummarizeDaily_Rounding(t *testing.T) {
	items := []forecastItem{
		item("2024-01-16 12:00:00", 24, 23.456, 25.944, "x"),
	}

	days := summarizeDaily(items, testNow, 3)
	if days[0].TempMin == nil || *days[0].TempMin != 23.5 {
		t.Errorf("TempMin = %v, want 23.5", days[0].TempMin)
	}
	if days[0].TempMax == nil || *days[0].TempMax != 25.9 {
		t.Errorf("TempMax = %v, want 25.9", days[0].TempMax)
	}
}

func TestSummarizeDaily_Empty(t *testing.T) {
	if days := summarizeDaily(nil, testNow, 3); len(days) != 0 {
		t.Errorf("len(days) = %d, want 0", len(days))
	}
}
