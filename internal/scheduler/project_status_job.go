package scheduler

import (
	"time"

	"github.com/blues/fis/internal/config"
	"github.com/blues/fis/internal/logger"
	"github.com/blues/fis/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// ProjectStatusJob 项目状态更新任务
//
// 定期扫描募资中的项目，所有里程碑都完成后把项目标记为已完成。
type ProjectStatusJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewProjectStatusJob 创建项目状态更新任务
func NewProjectStatusJob(db *gorm.DB, cfg *config.Config) *ProjectStatusJob {
	return &ProjectStatusJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *ProjectStatusJob) GetName() string {
	return "project_status_updater"
}

// GetSchedule 获取调度配置
func (j *ProjectStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.Interval) * time.Second)
}

// Execute 执行任务
func (j *ProjectStatusJob) Execute() {
	logger.Debug("Starting project status update task")

	var projects []model.ProjectModel
	err := j.db.Preload("Milestones").
		Where("status = ?", model.ProjectStatusActive).
		Find(&projects).Error
	if err != nil {
		logger.Error("Failed to fetch projects: %v", err)
		return
	}

	updatedCount := 0

	for _, project := range projects {
		if !allMilestonesCompleted(project.Milestones) {
			continue
		}

		// 条件更新：只迁移仍处于active的项目
		result := j.db.Model(&model.ProjectModel{}).
			Where("id = ? AND status = ?", project.Id, model.ProjectStatusActive).
			Update("status", model.ProjectStatusCompleted)
		if result.Error != nil {
			logger.Error("Failed to update project %d status: %v", project.Id, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			logger.Info("Updated project %d status from active to completed", project.Id)
			updatedCount++
		}
	}

	if updatedCount > 0 {
		logger.Info("Project status update completed. Updated %d projects", updatedCount)
	}
}

// allMilestonesCompleted 项目的全部里程碑是否都已完成
func allMilestonesCompleted(milestones []model.MilestoneModel) bool {
	if len(milestones) == 0 {
		return false
	}
	for _, m := range milestones {
		if m.Status != model.MilestoneStatusCompleted {
			return false
		}
	}
	return true
}
