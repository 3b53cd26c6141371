// Package timeutil содержит примитивы сравнения интервалов, на которых построено
// все планирование: попадание времени суток в диапазон и пересечение интервалов.
package timeutil

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// InRange проверяет попадание target в [start, end] включительно.
// Если start > end, диапазон переходит через полночь: target >= start ИЛИ target <= end.
// Аргументы должны быть валидными HH:MM, повторная валидация не выполняется.
func InRange(target, start, end types.TimeString) bool {
	t, s, e := target.Minutes(), start.Minutes(), end.Minutes()
	if s <= e {
		return t >= s && t <= e
	}
	return t >= s || t <= e
}

// Overlaps проверяет пересечение полуинтервалов [startA, endA) и [startB, endB).
// Касание концами пересечением не считается.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && endA.After(startB)
}

// TimeOfDayOverlaps то же, что Overlaps, но для времени суток
func TimeOfDayOverlaps(startA, endA, startB, endB types.TimeString) bool {
	return startA.Minutes() < endB.Minutes() && endA.Minutes() > startB.Minutes()
}
