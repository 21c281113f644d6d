package workcal

import (
	"time"
)

// DateLayout 日历日期格式，全系统的日期字段均为该格式的字符串
const DateLayout = "2006-01-02"

// EndDate 从 start 起逐日前进，数满 duration 个工作日后返回最后一个工作日。
// 工作日 = 非周日且不在 holidays 中的日子。start 当天不计入。
// duration <= 0 时原样返回 start。
//
// 每轮循环无条件前进一天，跳过与否只影响计数，因此不会死循环。
func EndDate(start time.Time, duration int, holidays map[string]bool) time.Time {
	current := start
	count := 0

	for count < duration {
		current = current.AddDate(0, 0, 1)

		// 跳过周日
		if current.Weekday() == time.Sunday {
			continue
		}

		// 跳过节假日（周日节假日只跳一次，上面已经 continue）
		if holidays[current.Format(DateLayout)] {
			continue
		}

		count++
	}

	return current
}

// ParseDate 解析 YYYY-MM-DD 日期字符串
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Today 返回本地日历日期的 YYYY-MM-DD 字符串
func Today() string {
	return time.Now().Format(DateLayout)
}
