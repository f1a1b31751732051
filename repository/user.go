package repository

import (
	"strings"

	"devlaunch/database/dbctx"
	"devlaunch/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(dbc dbctx.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return dbc.DB(r.db).Create(u).Error
}

func (r *UserRepository) GetByID(dbc dbctx.Context, id uint) (*models.User, error) {
	var u models.User
	if err := dbc.DB(r.db).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(dbc dbctx.Context, email string) (*models.User, error) {
	var u models.User
	if err := dbc.DB(r.db).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) EmailTaken(dbc dbctx.Context, email string) (bool, error) {
	var n int64
	err := dbc.DB(r.db).Model(&models.User{}).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Count(&n).Error
	return n > 0, err
}

// List pages through users, matching search case-insensitively on name.
func (r *UserRepository) List(dbc dbctx.Context, search string, p Page) ([]models.User, int64, error) {
	p = p.Normalized(10)
	q := dbc.DB(r.db).Model(&models.User{})
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(search))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := q.Order("id asc").Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) HardDelete(dbc dbctx.Context, id uint) error {
	res := dbc.DB(r.db).Unscoped().Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&models.User{}).Count(&n).Error
	return n, err
}
