package models

import "time"

// MonthStart returns the first day of the month containing t, at midnight UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last calendar day of the month containing t, at midnight UTC.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// IsMonthEnd reports whether t falls on the last calendar day of its month.
func IsMonthEnd(t time.Time) bool {
	return !t.IsZero() && t.Day() == MonthEnd(t).Day()
}

// PreviousMonthEnd returns the last day of the month before the one containing t.
func PreviousMonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 0, -1)
}

// NextMonthEnd returns the last day of the month after the one containing t.
func NextMonthEnd(t time.Time) time.Time {
	return MonthEnd(MonthStart(t).AddDate(0, 1, 0))
}

var monthNamesES = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthNameES returns the Spanish name of t's month.
func MonthNameES(t time.Time) string {
	return monthNamesES[t.Month()-1]
}
