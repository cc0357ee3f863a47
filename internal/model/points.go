package model

// PointsLedger 每个用户一行，积分只增不减
// 等级与进度由 TotalPoints 派生，不单独落库
// swagger:model PointsLedger
type PointsLedger struct {
	BaseModel
	UserID      uint  `gorm:"uniqueIndex;not null" json:"userId"`
	TotalPoints int   `gorm:"default:0" json:"totalPoints"`
	Version     int64 `gorm:"default:0" json:"-"`
}

func (PointsLedger) TableName() string {
	return "points_ledgers"
}

// LevelThresholds 等级门槛表，单调递增的凹曲线
var LevelThresholds = []int{
	0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000,
	15000, 20000, 27000, 35000, 45000, 60000, 80000, 100000,
}

// Level 当前等级，从 1 起
func (l *PointsLedger) Level() int {
	for i, threshold := range LevelThresholds {
		if l.TotalPoints < threshold {
			if i < 1 {
				return 1
			}
			return i
		}
	}
	return len(LevelThresholds)
}

// PointsToNextLevel 距下一级还差多少积分，满级返回 0
func (l *PointsLedger) PointsToNextLevel() int {
	level := l.Level()
	if level >= len(LevelThresholds) {
		return 0
	}
	return LevelThresholds[level] - l.TotalPoints
}

// LevelProgress 当前等级内的线性进度百分比
func (l *PointsLedger) LevelProgress() float64 {
	level := l.Level()
	if level >= len(LevelThresholds) {
		return 100.0
	}

	prev := LevelThresholds[level-1]
	next := LevelThresholds[level]

	progress := float64(l.TotalPoints-prev) / float64(next-prev) * 100
	return float64(int(progress*10+0.5)) / 10
}
