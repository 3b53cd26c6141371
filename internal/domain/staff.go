package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-SalonBookingService/pkg/timeutil"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// StaffMember мастер салона (пользователь с ролью worker)
type StaffMember struct {
	ID         int64
	Name       string
	IsActive   bool
	Skills     SkillSet
	ShiftStart types.TimeString
	ShiftEnd   types.TimeString
	BreakStart *types.TimeString // перерыв опционален
	BreakEnd   *types.TimeString
}

// IsQualifiedFor проверяет, что мастер умеет выполнять услугу
func (s *StaffMember) IsQualifiedFor(serviceID int64) bool {
	return s.Skills.Allows(serviceID)
}

// ShiftContains проверяет, что начало и конец записи (время суток) попадают в смену
func (s *StaffMember) ShiftContains(start, end types.TimeString) bool {
	shiftStart, shiftEnd := s.ShiftStart, s.ShiftEnd
	if shiftStart.IsZero() {
		shiftStart = DefaultShiftStart
	}
	if shiftEnd.IsZero() {
		shiftEnd = DefaultShiftEnd
	}
	return timeutil.InRange(start, shiftStart, shiftEnd) && timeutil.InRange(end, shiftStart, shiftEnd)
}

// BreakOverlaps проверяет пересечение записи [start, end) с перерывом мастера
func (s *StaffMember) BreakOverlaps(start, end types.TimeString) bool {
	if s.BreakStart == nil || s.BreakEnd == nil || s.BreakStart.IsZero() || s.BreakEnd.IsZero() {
		return false
	}
	return timeutil.TimeOfDayOverlaps(start, end, *s.BreakStart, *s.BreakEnd)
}

// SkillSet множество ID услуг, которые выполняет мастер.
// Пустой набор означает универсала, который может выполнять любую услугу.
type SkillSet struct {
	ids      map[int64]struct{}
	declared int // сколько элементов было в исходных данных, включая некорректные
}

// NewSkillSet создает набор из ID услуг
func NewSkillSet(ids ...int64) SkillSet {
	set := SkillSet{ids: make(map[int64]struct{}, len(ids)), declared: len(ids)}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

// ParseSkills нормализует JSON-массив навыков в SkillSet.
// Элементы могут быть числами или строками с числом ("3").
// Некорректные элементы отбрасываются, но учитываются в declared:
// набор из одних некорректных элементов не превращается в универсала.
func ParseSkills(raw []byte) (SkillSet, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return NewSkillSet(), nil
	}

	var items []interface{}
	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&items); err != nil {
		return SkillSet{}, fmt.Errorf("parse skills: %w", err)
	}

	set := SkillSet{ids: make(map[int64]struct{}, len(items)), declared: len(items)}
	for _, item := range items {
		if id, ok := normalizeID(item); ok {
			set.ids[id] = struct{}{}
		}
	}
	return set, nil
}

// normalizeID приводит json.Number или строку к int64
func normalizeID(v interface{}) (int64, bool) {
	var s string
	switch val := v.(type) {
	case json.Number:
		s = val.String()
	case string:
		s = strings.TrimSpace(val)
	default:
		return 0, false
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// допускаем "3.0" из старых данных
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, false
		}
		id = int64(f)
	}
	if id <= 0 {
		return 0, false
	}
	return id, true
}

// IsGeneralist возвращает true, если навыки не заданы
func (s SkillSet) IsGeneralist() bool {
	return s.declared == 0
}

// Allows проверяет, что набор допускает услугу
func (s SkillSet) Allows(serviceID int64) bool {
	if s.IsGeneralist() {
		return true
	}
	_, ok := s.ids[serviceID]
	return ok
}

// IDs возвращает нормализованные ID
func (s SkillSet) IDs() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids
}
