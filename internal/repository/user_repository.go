package repository

import (
	"edutrack_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// CountStudents 学生总数，教师仪表盘使用
func (r *UserRepository) CountStudents() (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("role = ?", model.Student).Count(&count).Error
	return count, err
}

// NamesByIDs 批量取用户名，排行榜和仪表盘拼装视图用
func (r *UserRepository) NamesByIDs(ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var users []model.User
	if err := r.DB.Select("id", "name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// ByIDs 批量取用户，排行榜按注册时间做最终平局裁决时需要
func (r *UserRepository) ByIDs(ids []uint) (map[uint]model.User, error) {
	users := make(map[uint]model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []model.User
	if err := r.DB.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

// CountWithoutStreakCreatedBefore 没有任何活动记录、且注册时间更早的用户数
// 用于给从未活跃的用户一个确定的排名位置
func (r *UserRepository) CountWithoutStreakCreatedBefore(createdAt time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Joins("LEFT JOIN streak_states ON streak_states.user_id = users.id").
		Where("streak_states.id IS NULL AND users.created_at < ?", createdAt).
		Count(&count).Error
	return count, err
}
