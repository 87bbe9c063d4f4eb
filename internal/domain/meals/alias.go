package meals

// Alias redirects a derived meal identity to a replacement identity chosen by the user,
// so records with drifting names can be merged under one counter.
type Alias struct {
	MealID      string `gorm:"column:meal_id;type:varchar(64);primaryKey" json:"meal_id"`
	Replacement string `gorm:"column:replacement;type:varchar(64);not null" json:"replacement"`
}

func (Alias) TableName() string { return "meal_aliases" }
