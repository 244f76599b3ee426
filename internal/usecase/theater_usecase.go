package usecase

import (
	"context"
	"errors"

	"surgical-clinic-backend/internal/converter"
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/delivery/http/middleware"
	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/internal/domain/repository"
	"surgical-clinic-backend/internal/infrastructure/database"
	"surgical-clinic-backend/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrTheaterNameTaken = errors.New("theater name already exists")

type TheaterUsecase interface {
	CreateTheater(ctx context.Context, req *dto.CreateTheaterRequest) (*dto.TheaterResponse, error)
	ListTheaters(ctx context.Context) (*dto.TheaterListResponse, error)
	UpdateTheater(ctx context.Context, id int, req *dto.UpdateTheaterRequest) (*dto.TheaterResponse, error)
	DeleteTheater(ctx context.Context, id int) error
}

type theaterUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	transactor   database.Transactor
	theaterRepo  repository.TheaterRepository
	auditService service.AuditService
}

func NewTheaterUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	transactor database.Transactor,
	theaterRepo repository.TheaterRepository,
	auditService service.AuditService,
) TheaterUsecase {
	return &theaterUsecase{
		db:           db,
		log:          log,
		transactor:   transactor,
		theaterRepo:  theaterRepo,
		auditService: auditService,
	}
}

func (u *theaterUsecase) CreateTheater(ctx context.Context, req *dto.CreateTheaterRequest) (*dto.TheaterResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var theater *entity.Theater
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		theater = &entity.Theater{
			Name:     req.Name,
			Location: req.Location,
		}

		if err := u.theaterRepo.Create(tx, theater); err != nil {
			if isUniqueViolation(err) {
				return ErrTheaterNameTaken
			}
			u.log.Warnf("Failed to create theater: %+v", err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionTheaterCreate, "theater", theater.Name, nil)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Theater created: id=%d, name=%s", theater.ID, theater.Name)
	return converter.TheaterToResponse(theater), nil
}

func (u *theaterUsecase) ListTheaters(ctx context.Context) (*dto.TheaterListResponse, error) {
	theaters, err := u.theaterRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list theaters: %+v", err)
		return nil, err
	}

	return &dto.TheaterListResponse{
		Theaters: converter.TheatersToResponses(theaters),
		Total:    len(theaters),
	}, nil
}

func (u *theaterUsecase) UpdateTheater(ctx context.Context, id int, req *dto.UpdateTheaterRequest) (*dto.TheaterResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var theater *entity.Theater
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		theater, err = u.theaterRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find theater %d: %+v", id, err)
			return err
		}
		if theater == nil {
			return ErrTheaterNotFound
		}

		if req.Name != "" {
			theater.Name = req.Name
		}
		if req.Location != "" {
			theater.Location = req.Location
		}
		if req.IsActive != nil {
			theater.IsActive = req.IsActive
		}

		if err := u.theaterRepo.Update(tx, theater); err != nil {
			if isUniqueViolation(err) {
				return ErrTheaterNameTaken
			}
			u.log.Warnf("Failed to update theater %d: %+v", id, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionTheaterUpdate, "theater", theater.Name, nil)
	})
	if err != nil {
		return nil, err
	}

	return converter.TheaterToResponse(theater), nil
}

func (u *theaterUsecase) DeleteTheater(ctx context.Context, id int) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	return u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.theaterRepo.Delete(tx, id)
		if err != nil {
			u.log.Warnf("Failed to delete theater %d: %+v", id, err)
			return err
		}
		if affected == 0 {
			return ErrTheaterNotFound
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionTheaterDelete, "theater", "", map[string]interface{}{
			"theater_id": id,
		})
	})
}
