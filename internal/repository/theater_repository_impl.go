package repository

import (
	"errors"

	"surgical-clinic-backend/internal/domain/entity"
	domainRepo "surgical-clinic-backend/internal/domain/repository"

	"gorm.io/gorm"
)

type theaterRepository struct{}

func NewTheaterRepository() domainRepo.TheaterRepository {
	return &theaterRepository{}
}

func (r *theaterRepository) Create(db *gorm.DB, theater *entity.Theater) error {
	return db.Create(theater).Error
}

func (r *theaterRepository) FindByID(db *gorm.DB, id int) (*entity.Theater, error) {
	var theater entity.Theater
	err := db.Where("id = ?", id).First(&theater).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &theater, nil
}

func (r *theaterRepository) FindAll(db *gorm.DB) ([]entity.Theater, error) {
	var theaters []entity.Theater
	err := db.Order("name ASC").Find(&theaters).Error
	if err != nil {
		return nil, err
	}
	return theaters, nil
}

func (r *theaterRepository) Update(db *gorm.DB, theater *entity.Theater) error {
	return db.Omit("Bookings").Save(theater).Error
}

func (r *theaterRepository) Delete(db *gorm.DB, id int) (int64, error) {
	result := db.Delete(&entity.Theater{}, id)
	return result.RowsAffected, result.Error
}
