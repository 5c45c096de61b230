package task

import (
	"context"
	"errors"
	"fmt"

	"buildingclash/internal/model"
	"buildingclash/internal/postgres"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresCache stores encoded records in the task_results table
type PostgresCache struct {
	db *gorm.DB
}

// NewPostgresCache creates a cache on an already migrated database
func NewPostgresCache(db *gorm.DB) *PostgresCache {
	return &PostgresCache{db: db}
}

func (c *PostgresCache) Get(ctx context.Context, taskID string) (model.FeatureCollection, bool, error) {
	var row postgres.TaskResultPG
	err := c.db.WithContext(ctx).Where("task_id = ?", taskID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.FeatureCollection{}, false, nil
	}
	if err != nil {
		return model.FeatureCollection{}, false, fmt.Errorf("select task %s: %w", taskID, err)
	}

	_, fc, err := DecodeRecord([]byte(row.Result))
	if err != nil {
		return model.FeatureCollection{}, false, err
	}
	return fc, true, nil
}

// Put upserts the record; a concurrent duplicate write of the same id wins harmlessly
func (c *PostgresCache) Put(ctx context.Context, taskID string, result model.FeatureCollection) error {
	data, err := EncodeRecord(taskID, result)
	if err != nil {
		return err
	}

	row := postgres.TaskResultPG{TaskID: taskID, Result: string(data)}
	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"result", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert task %s: %w", taskID, err)
	}
	return nil
}
