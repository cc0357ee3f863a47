package model

import (
	"time"
)

// ActivityType 学习活动类型，封闭枚举
// 新增类型时需要同步扩展 service 层的积分表
type ActivityType string

const (
	ActivityLessonComplete    ActivityType = "lesson_complete"
	ActivityQuizComplete      ActivityType = "quiz_complete"
	ActivityChallengeComplete ActivityType = "challenge_complete"
	ActivityContentView       ActivityType = "content_view"
	ActivityVideoWatched      ActivityType = "video_watched"
	ActivityAssignmentSubmit  ActivityType = "assignment_submit"
	ActivityDiscussionPost    ActivityType = "discussion_post"
)

var activityTypes = map[ActivityType]bool{
	ActivityLessonComplete:    true,
	ActivityQuizComplete:      true,
	ActivityChallengeComplete: true,
	ActivityContentView:       true,
	ActivityVideoWatched:      true,
	ActivityAssignmentSubmit:  true,
	ActivityDiscussionPost:    true,
}

func ValidActivityType(t ActivityType) bool {
	return activityTypes[t]
}

// ActivityEvent 学习活动事件，只追加不修改
// swagger:model ActivityEvent
type ActivityEvent struct {
	UUIDBase
	UserID          uint         `gorm:"index:idx_activity_user_time;not null" json:"userId"`
	ActivityType    ActivityType `gorm:"size:32;not null" json:"activityType"`
	OccurredAt      time.Time    `gorm:"index:idx_activity_user_time;not null" json:"occurredAt"`
	DurationSeconds int          `gorm:"default:0" json:"durationSeconds"`
	PointsEarned    int          `gorm:"default:0" json:"pointsEarned"`
}

func (ActivityEvent) TableName() string {
	return "activity_events"
}
