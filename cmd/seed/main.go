package main

import (
	"fmt"
	"time"

	"surgical-clinic-backend/config"
	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/internal/infrastructure/database"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds the database with demo staff accounts, patients, theaters and a
// handful of appointments for local development. Safe to re-run: rows are
// matched on their natural keys before insert.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(cfg.DB); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	gofakeit.Seed(42)

	staff, err := seedStaff(db)
	if err != nil {
		logrus.Fatalf("Failed to seed staff: %v", err)
	}

	patients, err := seedPatients(db, 20)
	if err != nil {
		logrus.Fatalf("Failed to seed patients: %v", err)
	}

	if err := seedTheaters(db); err != nil {
		logrus.Fatalf("Failed to seed theaters: %v", err)
	}

	if err := seedAppointments(db, staff, patients); err != nil {
		logrus.Fatalf("Failed to seed appointments: %v", err)
	}

	logrus.Info("Seeding complete")
}

// seedStaff creates one account per role plus a couple of extra surgeons.
// Every account uses the password "password123".
func seedStaff(db *gorm.DB) ([]entity.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	accounts := []entity.User{
		{RoleID: entity.RoleIDAdmin, Email: "admin@clinic.local", FullName: "Clinic Administrator"},
		{RoleID: entity.RoleIDSurgeon, Email: "surgeon@clinic.local", FullName: gofakeit.Name()},
		{RoleID: entity.RoleIDSurgeon, Email: "surgeon2@clinic.local", FullName: gofakeit.Name()},
		{RoleID: entity.RoleIDDoctor, Email: "doctor@clinic.local", FullName: gofakeit.Name()},
		{RoleID: entity.RoleIDDoctor, Email: "doctor2@clinic.local", FullName: gofakeit.Name()},
		{RoleID: entity.RoleIDReception, Email: "reception@clinic.local", FullName: gofakeit.Name()},
	}

	seeded := make([]entity.User, 0, len(accounts))
	for _, account := range accounts {
		account.Password = string(hashed)
		user := entity.User{}
		err := db.Where("email = ?", account.Email).
			Attrs(account).
			FirstOrCreate(&user).Error
		if err != nil {
			return nil, err
		}
		seeded = append(seeded, user)
		logrus.Infof("Staff account ready: %s (role %d)", user.Email, user.RoleID)
	}

	return seeded, nil
}

func seedPatients(db *gorm.DB, count int) ([]entity.Patient, error) {
	seeded := make([]entity.Patient, 0, count)
	for i := 0; i < count; i++ {
		gender := entity.GenderFemale
		if gofakeit.Bool() {
			gender = entity.GenderMale
		}

		attrs := entity.Patient{
			MRN:         fmt.Sprintf("MRN-%06d", i+1),
			FullName:    gofakeit.Name(),
			DateOfBirth: gofakeit.DateRange(time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2008, 12, 31, 0, 0, 0, 0, time.UTC)),
			Gender:      gender,
			PhoneNumber: gofakeit.Phone(),
			Address:     gofakeit.Address().Address,
		}

		patient := entity.Patient{}
		err := db.Where("mrn = ?", attrs.MRN).
			Attrs(attrs).
			FirstOrCreate(&patient).Error
		if err != nil {
			return nil, err
		}
		seeded = append(seeded, patient)
	}

	logrus.Infof("Seeded %d patients", len(seeded))
	return seeded, nil
}

func seedTheaters(db *gorm.DB) error {
	theaters := []entity.Theater{
		{Name: "Theater 1", Location: "Ground floor, east wing"},
		{Name: "Theater 2", Location: "Ground floor, west wing"},
		{Name: "Theater 3", Location: "First floor"},
	}

	for _, attrs := range theaters {
		theater := entity.Theater{}
		err := db.Where("name = ?", attrs.Name).
			Attrs(attrs).
			FirstOrCreate(&theater).Error
		if err != nil {
			return err
		}
	}

	logrus.Infof("Seeded %d theaters", len(theaters))
	return nil
}

// seedAppointments books pending consultations across the next few days,
// spread over the clinical staff.
func seedAppointments(db *gorm.DB, staff []entity.User, patients []entity.Patient) error {
	doctors := make([]entity.User, 0, len(staff))
	for _, user := range staff {
		if user.RoleID == entity.RoleIDDoctor || user.RoleID == entity.RoleIDSurgeon {
			doctors = append(doctors, user)
		}
	}
	if len(doctors) == 0 || len(patients) == 0 {
		return nil
	}

	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	created := 0
	for i, patient := range patients {
		if i >= 12 {
			break
		}
		doctor := doctors[i%len(doctors)]
		scheduledAt := day.Add(time.Duration(i/len(doctors))*24*time.Hour + time.Duration(9+i%len(doctors))*time.Hour)

		appointment := entity.Appointment{}
		err := db.Where("patient_id = ? AND doctor_id = ? AND scheduled_at = ?", patient.ID, doctor.ID, scheduledAt).
			Attrs(entity.Appointment{
				PatientID:   patient.ID,
				DoctorID:    doctor.ID,
				ScheduledAt: scheduledAt,
				Type:        entity.AppointmentTypeConsultation,
				Status:      entity.AppointmentStatusPending,
			}).
			FirstOrCreate(&appointment).Error
		if err != nil {
			return err
		}
		created++
	}

	logrus.Infof("Seeded %d appointments", created)
	return nil
}
