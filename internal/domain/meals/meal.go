package meals

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type MealType string

const (
	Lunch  MealType = "Lunch"
	Dinner MealType = "Dinner"
)

func (t MealType) Valid() bool { return t == Lunch || t == Dinner }

// slot is the offset from midnight UTC used to derive a record timestamp,
// so a lunch and a dinner on the same date never share a key.
func (t MealType) slot() (time.Duration, bool) {
	switch t {
	case Lunch:
		return 12 * time.Hour, true
	case Dinner:
		return 20 * time.Hour, true
	default:
		return 0, false
	}
}

type Participants string

const (
	PersonA Participants = "PersonA"
	PersonB Participants = "PersonB"
	Both    Participants = "Both"
)

func (p Participants) Valid() bool { return p == PersonA || p == PersonB || p == Both }

// Meal is one recorded meal event. Records are never updated in place.
type Meal struct {
	// (Timestamp, Participants) is the primary key and the de-duplication boundary.
	Timestamp    int64        `gorm:"column:timestamp;primaryKey;autoIncrement:false;index:idx_meals_week_ts,priority:2" json:"timestamp"`
	Participants Participants `gorm:"column:participants;type:varchar(16);primaryKey" json:"participants"`

	Date datatypes.Date `gorm:"column:date;not null" json:"-"`

	// WeekNumber > 0 marks the first record of a cycle; 0 for every other record.
	WeekNumber int `gorm:"column:week_number;not null;default:0;index:idx_meals_week_ts,priority:1" json:"week_number"`

	MealType MealType `gorm:"column:meal_type;type:varchar(16);not null" json:"meal_type"`
	MealName string   `gorm:"column:meal_name;type:text" json:"meal"`
	MealID   string   `gorm:"column:meal_id;type:varchar(64);not null;index" json:"meal_id"`
	Dessert  string   `gorm:"column:dessert;type:text" json:"dessert"`
	Notes    string   `gorm:"column:notes;type:text" json:"notes"`
}

func (Meal) TableName() string { return "meals" }

func (m *Meal) StartWeek() bool { return m != nil && m.WeekNumber > 0 }

// Day returns the calendar date as YYYY-MM-DD.
func (m *Meal) Day() string {
	if m == nil {
		return ""
	}
	return time.Time(m.Date).UTC().Format(DateLayout)
}

// DateLayout is the wire and storage layout for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate accepts a bare calendar date or an RFC 3339 timestamp; the time of day is dropped.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, NewError(CodeValidation, "meals.ParseDate", "missing date", nil)
	}
	if d, err := time.Parse(DateLayout, raw); err == nil {
		return d.UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, NewError(CodeValidation, "meals.ParseDate", fmt.Sprintf("invalid date %q", raw), err)
	}
	y, mo, d := ts.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC), nil
}

// KeyTimestamp derives the record timestamp from a calendar date and meal type.
func KeyTimestamp(date time.Time, mealType MealType) (int64, error) {
	offset, ok := mealType.slot()
	if !ok {
		return 0, NewError(CodeValidation, "meals.KeyTimestamp", fmt.Sprintf("invalid meal_type %q", mealType), nil)
	}
	y, mo, d := date.Date()
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	return midnight.Add(offset).Unix(), nil
}

// Key identifies exactly one meal record.
type Key struct {
	Timestamp    int64
	Participants Participants
}

// KeyFor builds a record key from the fields a delete or lookup request carries.
func KeyFor(rawDate string, mealType MealType, participants Participants) (Key, error) {
	const op = "meals.KeyFor"
	if !participants.Valid() {
		return Key{}, NewError(CodeValidation, op, fmt.Sprintf("invalid participants %q", participants), nil)
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return Key{}, err
	}
	ts, err := KeyTimestamp(date, mealType)
	if err != nil {
		return Key{}, err
	}
	return Key{Timestamp: ts, Participants: participants}, nil
}

// NewMealInput is what a caller supplies to record a meal.
type NewMealInput struct {
	Date         string
	StartWeek    bool
	WeekNumber   int
	MealType     MealType
	Participants Participants
	MealName     string
	MealID       string
	Dessert      string
	Notes        string
}

// Build validates the input and produces a record. MealID stays empty when the
// caller did not provide one; the store derives it from the name.
func (in NewMealInput) Build() (*Meal, error) {
	const op = "meals.NewMealInput.Build"
	if !in.MealType.Valid() {
		return nil, NewError(CodeValidation, op, fmt.Sprintf("invalid meal_type %q, allowed values are Lunch, Dinner", in.MealType), nil)
	}
	if !in.Participants.Valid() {
		return nil, NewError(CodeValidation, op, fmt.Sprintf("invalid participants %q, allowed values are PersonA, PersonB, Both", in.Participants), nil)
	}
	if in.WeekNumber < 0 {
		return nil, NewError(CodeValidation, op, "week_number must not be negative", nil)
	}
	if in.WeekNumber > 0 && !in.StartWeek {
		return nil, NewError(CodeValidation, op, "week_number is only allowed on start_week records", nil)
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	ts, err := KeyTimestamp(date, in.MealType)
	if err != nil {
		return nil, err
	}
	return &Meal{
		Timestamp:    ts,
		Participants: in.Participants,
		Date:         datatypes.Date(date),
		WeekNumber:   in.WeekNumber,
		MealType:     in.MealType,
		MealName:     strings.TrimSpace(in.MealName),
		MealID:       strings.TrimSpace(in.MealID),
		Dessert:      strings.TrimSpace(in.Dessert),
		Notes:        strings.TrimSpace(in.Notes),
	}, nil
}
