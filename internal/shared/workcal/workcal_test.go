package workcal

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestEndDateSkipsSundays(t *testing.T) {
	// 2024-01-01 是周一。6个工作日：01-02..01-06（周六计入），01-07 周日跳过，
	// 第6个落在 01-08。
	start := mustDate(t, "2024-01-01")
	end := EndDate(start, 6, nil)
	if got := end.Format(DateLayout); got != "2024-01-08" {
		t.Errorf("EndDate = %s, want 2024-01-08", got)
	}
}

func TestEndDateSkipsHolidays(t *testing.T) {
	start := mustDate(t, "2024-01-01")
	holidays := map[string]bool{"2024-01-03": true}
	end := EndDate(start, 6, holidays)
	if got := end.Format(DateLayout); got != "2024-01-09" {
		t.Errorf("EndDate = %s, want 2024-01-09", got)
	}
}

func TestEndDateSundayHolidaySkippedOnce(t *testing.T) {
	// 2024-01-07 既是周日又是节假日，只应跳过一次
	start := mustDate(t, "2024-01-01")
	holidays := map[string]bool{"2024-01-07": true}
	end := EndDate(start, 6, holidays)
	if got := end.Format(DateLayout); got != "2024-01-08" {
		t.Errorf("EndDate = %s, want 2024-01-08", got)
	}
}

func TestEndDateZeroDuration(t *testing.T) {
	start := mustDate(t, "2024-01-01")
	end := EndDate(start, 0, map[string]bool{"2024-01-02": true})
	if !end.Equal(start) {
		t.Errorf("EndDate with duration 0 = %s, want start unchanged", end.Format(DateLayout))
	}
	end = EndDate(start, -3, nil)
	if !end.Equal(start) {
		t.Errorf("EndDate with negative duration = %s, want start unchanged", end.Format(DateLayout))
	}
}

func TestEndDateStartDayNotCounted(t *testing.T) {
	// start 当天不计入：duration=1 从周一开始应落在周二
	start := mustDate(t, "2024-01-01")
	end := EndDate(start, 1, nil)
	if got := end.Format(DateLayout); got != "2024-01-02" {
		t.Errorf("EndDate = %s, want 2024-01-02", got)
	}
}

func TestEndDateCountsExactlyDurationWorkingDays(t *testing.T) {
	start := mustDate(t, "2024-01-01")
	holidays := map[string]bool{
		"2024-01-03": true,
		"2024-01-10": true,
	}

	for duration := 1; duration <= 60; duration++ {
		end := EndDate(start, duration, holidays)
		if end.Before(start) {
			t.Fatalf("duration %d: end %s before start", duration, end.Format(DateLayout))
		}

		// (start, end] 区间内的工作日数必须等于 duration
		count := 0
		for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
			if d.Weekday() == time.Sunday || holidays[d.Format(DateLayout)] {
				continue
			}
			count++
		}
		if count != duration {
			t.Errorf("duration %d: counted %d working days in (start, %s]", duration, count, end.Format(DateLayout))
		}

		// 最后一天本身必须是工作日
		if end.Weekday() == time.Sunday || holidays[end.Format(DateLayout)] {
			t.Errorf("duration %d: end %s is not a working day", duration, end.Format(DateLayout))
		}
	}
}
