// Package booking содержит расчеты по календарю аренды: диапазоны дат,
// пересечения и свободные дни месяца.
package booking

import (
	"math/bits"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange - диапазон календарных дат, обе границы включены.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange нормализует границы до календарных дат в UTC.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: DateOf(start), End: DateOf(end)}
}

// ParseDateRange разбирает даты в формате YYYY-MM-DD.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e), nil
}

// DateOf отбрасывает время суток и часовой пояс.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Valid сообщает, что конец диапазона не раньше начала.
func (r DateRange) Valid() bool {
	return !r.End.Before(r.Start)
}

// Contains сообщает, попадает ли день в диапазон.
func (r DateRange) Contains(day time.Time) bool {
	day = DateOf(day)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Overlaps сообщает, есть ли у диапазонов общий день.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

// DaysIn возвращает число дней в месяце.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Month возвращает диапазон от первого до последнего дня месяца.
func Month(year int, month time.Month) DateRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month, DaysIn(year, month), 0, 0, 0, 0, time.UTC)
	return DateRange{Start: first, End: last}
}

// AvailableDays возвращает свободные дни месяца по возрастанию.
// Занятые дни хранятся битовой маской: бит d соответствует дню d,
// повторная пометка дня ничего не меняет.
func AvailableDays(year int, month time.Month, booked []DateRange) []int {
	period := Month(year, month)
	numDays := period.End.Day()

	var occupied uint64
	for _, r := range booked {
		if !r.Overlaps(period) {
			continue
		}
		from := 1
		if r.Start.After(period.Start) {
			from = r.Start.Day()
		}
		to := numDays
		if r.End.Before(period.End) {
			to = r.End.Day()
		}
		occupied |= dayMask(from, to)
	}

	days := make([]int, 0, numDays-bits.OnesCount64(occupied))
	for day := 1; day <= numDays; day++ {
		if occupied&(1<<uint(day)) == 0 {
			days = append(days, day)
		}
	}
	return days
}

// dayMask выставляет биты from..to включительно.
func dayMask(from, to int) uint64 {
	return (uint64(1)<<uint(to+1) - 1) &^ (uint64(1)<<uint(from) - 1)
}
