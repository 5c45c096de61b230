package postgres

import "time"

// TaskResultPG is the GORM model for a cached task result.
// Result holds the encoded record with numbers as decimal strings.
type TaskResultPG struct {
	TaskID string `gorm:"primaryKey;size:64"`
	Result string `gorm:"type:jsonb;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the pluralized default
func (TaskResultPG) TableName() string {
	return "task_results"
}
