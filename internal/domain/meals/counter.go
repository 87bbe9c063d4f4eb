package meals

// Counter is the running tally for one meal identity.
// CountTotal always equals CountBoth + CountPersonA + CountPersonB.
type Counter struct {
	MealID       string `gorm:"column:meal_id;type:varchar(64);primaryKey" json:"meal_id"`
	MealName     string `gorm:"column:meal_name;type:text;not null;default:''" json:"name"`
	CountTotal   int    `gorm:"column:count_total;not null;default:0" json:"count_total"`
	CountBoth    int    `gorm:"column:count_both;not null;default:0" json:"count_both"`
	CountPersonA int    `gorm:"column:count_person_a;not null;default:0" json:"count_person_a"`
	CountPersonB int    `gorm:"column:count_person_b;not null;default:0" json:"count_person_b"`
}

func (Counter) TableName() string { return "meal_counters" }

// BucketColumn is the counter column tracking the given participant group.
func BucketColumn(p Participants) (string, bool) {
	switch p {
	case Both:
		return "count_both", true
	case PersonA:
		return "count_person_a", true
	case PersonB:
		return "count_person_b", true
	default:
		return "", false
	}
}

// Consistent reports whether the total matches the per-participant buckets.
func (c *Counter) Consistent() bool {
	if c == nil {
		return true
	}
	return c.CountTotal == c.CountBoth+c.CountPersonA+c.CountPersonB &&
		c.CountBoth >= 0 && c.CountPersonA >= 0 && c.CountPersonB >= 0
}

// MealCount is the id -> {name, count} projection of the counter table.
type MealCount struct {
	MealID string `json:"meal_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// Projection drops the per-participant buckets.
func (c *Counter) Projection() MealCount {
	return MealCount{MealID: c.MealID, Name: c.MealName, Count: c.CountTotal}
}

// Occurrences is recomputed from meal records on every read, unlike Counter.
type Occurrences struct {
	MealID  string `json:"meal_id"`
	Total   int    `json:"total"`
	Both    int    `json:"both"`
	PersonA int    `json:"person_a"`
	PersonB int    `json:"person_b"`
}

// Tally builds an Occurrences from the participants column of matching records.
func Tally(mealID string, participants []Participants) Occurrences {
	out := Occurrences{MealID: mealID, Total: len(participants)}
	for _, p := range participants {
		switch p {
		case Both:
			out.Both++
		case PersonA:
			out.PersonA++
		case PersonB:
			out.PersonB++
		}
	}
	return out
}

// Matches reports whether the recomputed view agrees with the ledger row.
func (o Occurrences) Matches(c *Counter) bool {
	if c == nil {
		return o.Total == 0
	}
	return o.Total == c.CountTotal && o.Both == c.CountBoth && o.PersonA == c.CountPersonA && o.PersonB == c.CountPersonB
}
