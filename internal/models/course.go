package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Curriculum is stored as opaque JSON; only its shape is used for progress math.
type Curriculum struct {
	Modules []CurriculumModule `json:"modules"`
}

type CurriculumModule struct {
	Title   string             `json:"title"`
	Lessons []CurriculumLesson `json:"lessons"`
}

type CurriculumLesson struct {
	Title   string `json:"title"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content,omitempty"`
}

type Course struct {
	ID          uint                           `json:"id" gorm:"primaryKey"`
	Title       string                         `json:"title" gorm:"not null;size:255"`
	Description string                         `json:"description" gorm:"type:text"`
	Price       decimal.Decimal                `json:"price" gorm:"type:numeric(10,2);not null;default:0"`
	Category    string                         `json:"category" gorm:"size:100;default:General"`
	Curriculum  datatypes.JSONType[Curriculum] `json:"curriculum"`

	IsActive  bool `json:"is_active" gorm:"not null"`
	IsDeleted bool `json:"is_deleted" gorm:"not null;default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) IsFree() bool {
	return !c.Price.IsPositive()
}

// IsAvailable reports whether new enrollments may be created.
func (c *Course) IsAvailable() bool {
	return c.IsActive && !c.IsDeleted
}

func (c *Course) ModuleCount() int {
	return len(c.Curriculum.Data().Modules)
}

func (c *Course) LessonCount() int {
	total := 0
	for _, m := range c.Curriculum.Data().Modules {
		total += len(m.Lessons)
	}
	return total
}

// PriceMinorUnits returns the price in the smallest currency unit (cents).
func (c *Course) PriceMinorUnits() int64 {
	return c.Price.Shift(2).Round(0).IntPart()
}
