package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysRange(from, to int) []int {
	var days []int
	for d := from; d <= to; d++ {
		days = append(days, d)
	}
	return days
}

func TestDaysIn(t *testing.T) {
	require.Equal(t, 31, DaysIn(2024, time.March))
	require.Equal(t, 29, DaysIn(2024, time.February))
	require.Equal(t, 28, DaysIn(2023, time.February))
	require.Equal(t, 30, DaysIn(2021, time.April))
}

func TestAvailableDays_NoOrders(t *testing.T) {
	days := AvailableDays(2024, time.April, nil)
	require.Equal(t, daysRange(1, 30), days)
}

func TestAvailableDays_ExcludesConfirmedRangeInclusive(t *testing.T) {
	booked := []DateRange{NewDateRange(date(2024, time.March, 10), date(2024, time.March, 15))}

	days := AvailableDays(2024, time.March, booked)

	for d := 10; d <= 15; d++ {
		require.NotContains(t, days, d)
	}
	expected := append(daysRange(1, 9), daysRange(16, 31)...)
	require.Equal(t, expected, days)
}

func TestAvailableDays_OverlappingOrdersAreNoop(t *testing.T) {
	booked := []DateRange{
		NewDateRange(date(2024, time.March, 3), date(2024, time.March, 8)),
		NewDateRange(date(2024, time.March, 5), date(2024, time.March, 12)),
		NewDateRange(date(2024, time.March, 5), date(2024, time.March, 12)),
	}

	days := AvailableDays(2024, time.March, booked)

	expected := append(daysRange(1, 2), daysRange(13, 31)...)
	require.Equal(t, expected, days)
}

func TestAvailableDays_ClampsToMonth(t *testing.T) {
	booked := []DateRange{
		// начинается в феврале, заканчивается в марте
		NewDateRange(date(2024, time.February, 27), date(2024, time.March, 2)),
		// начинается в марте, заканчивается в апреле
		NewDateRange(date(2024, time.March, 30), date(2024, time.April, 4)),
		// целиком в другом месяце
		NewDateRange(date(2024, time.May, 1), date(2024, time.May, 3)),
	}

	days := AvailableDays(2024, time.March, booked)

	require.Equal(t, daysRange(3, 29), days)
}

func TestAvailableDays_WholeMonthBooked(t *testing.T) {
	booked := []DateRange{NewDateRange(date(2024, time.January, 20), date(2024, time.March, 5))}

	days := AvailableDays(2024, time.February, booked)

	require.Empty(t, days)
}

func TestAvailableDays_SingleDayOrder(t *testing.T) {
	booked := []DateRange{NewDateRange(date(2023, time.February, 28), date(2023, time.February, 28))}

	days := AvailableDays(2023, time.February, booked)

	require.Equal(t, daysRange(1, 27), days)
}

func TestDateRange_Contains(t *testing.T) {
	r := NewDateRange(date(2024, time.March, 10), date(2024, time.March, 15))

	require.True(t, r.Contains(date(2024, time.March, 10)))
	require.True(t, r.Contains(date(2024, time.March, 15)))
	require.True(t, r.Contains(time.Date(2024, time.March, 15, 23, 59, 0, 0, time.UTC)))
	require.False(t, r.Contains(date(2024, time.March, 9)))
	require.False(t, r.Contains(date(2024, time.March, 16)))
}

func TestDateRange_Overlaps(t *testing.T) {
	a := NewDateRange(date(2024, time.March, 1), date(2024, time.March, 5))
	b := NewDateRange(date(2024, time.March, 10), date(2024, time.March, 12))
	c := NewDateRange(date(2024, time.March, 3), date(2024, time.March, 7))
	d := NewDateRange(date(2024, time.March, 5), date(2024, time.March, 5))

	require.False(t, a.Overlaps(b))
	require.True(t, a.Overlaps(c))
	require.True(t, c.Overlaps(a))
	require.True(t, a.Overlaps(d))
	require.False(t, c.Overlaps(b))
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2024-03-10", "2024-03-15")
	require.NoError(t, err)
	require.True(t, r.Valid())
	require.Equal(t, date(2024, time.March, 10), r.Start)

	r, err = ParseDateRange("2024-03-15", "2024-03-10")
	require.NoError(t, err)
	require.False(t, r.Valid())

	_, err = ParseDateRange("2024-13-01", "2024-03-10")
	require.Error(t, err)
}
