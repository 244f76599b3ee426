package repository

import (
	"surgical-clinic-backend/internal/domain/entity"

	"gorm.io/gorm"
)

type TheaterRepository interface {
	Create(db *gorm.DB, theater *entity.Theater) error
	FindByID(db *gorm.DB, id int) (*entity.Theater, error)
	FindAll(db *gorm.DB) ([]entity.Theater, error)
	Update(db *gorm.DB, theater *entity.Theater) error
	Delete(db *gorm.DB, id int) (int64, error)
}
