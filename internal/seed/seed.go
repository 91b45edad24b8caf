package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/app/session"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// Demo accounts created on an empty store
const (
	ManagerEmail = "placements@campusconnect.local"
	HODEmail     = "hod.cs@campusconnect.local"
	Password     = "Placement123!"
)

func cgpa(v float64) *float64 { return &v }

var defaultDrives = []dto.CreateDriveRequest{
	{
		CompanyName:         "Acme Systems",
		RoleOffered:         "Software Engineer",
		SalaryOffered:       "12",
		JobDescription:      "Build and operate backend services.",
		Requirements:        "Data structures, one backend language",
		Location:            "Bengaluru",
		ApplicationDeadline: "2025-12-31",
		CGPACriteria:        cgpa(7.5),
		ContactEmail:        "hr@acme.example",
	},
	{
		CompanyName:    "Northwind Analytics",
		RoleOffered:    "Data Analyst",
		SalaryOffered:  "8",
		JobDescription: "Reporting and dashboarding for retail clients.",
		Location:       "Hyderabad",
		JobType:        "Internship",
	},
}

// CreateDefaultData signs up a placement manager and a head of department
// and posts a couple of drives when none exist. Existing accounts are left
// alone.
func CreateDefaultData(ctx context.Context, svc *services.Services, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (accounts and drives)...")
	var finalErr error

	manager, err := signUp(ctx, svc, &dto.SignUpRequest{
		Email:      ManagerEmail,
		Password:   Password,
		Role:       string(models.RoleManager),
		Name:       "Placement Manager",
		Department: models.DefaultManagerDept,
	}, lgr)
	if err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if _, err := signUp(ctx, svc, &dto.SignUpRequest{
		Email:      HODEmail,
		Password:   Password,
		Role:       string(models.RoleHOD),
		Name:       "Head of Computer Science",
		Department: models.DefaultHODDept,
	}, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if manager != nil {
		if err := createDrives(ctx, svc, manager, lgr); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

// signUp returns nil without error when the account already exists
func signUp(ctx context.Context, svc *services.Services, req *dto.SignUpRequest, lgr zerolog.Logger) (*session.Session, error) {
	res, err := svc.AuthService.SignUp(ctx, req)
	if errors.Is(err, apperrors.ErrAccountExists) {
		lgr.Info().Str("email", req.Email).Msg("Account already exists, skipping creation")
		return nil, nil
	}
	if err != nil {
		lgr.Error().Err(err).Str("email", req.Email).Msg("Error creating default account")
		return nil, err
	}

	lgr.Info().Str("email", req.Email).Str("role", req.Role).Msg("Default account created")
	return res.Session, nil
}

func createDrives(ctx context.Context, svc *services.Services, manager *session.Session, lgr zerolog.Logger) error {
	existing, err := svc.DriveService.ListAllDrives(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	var finalErr error
	for i := range defaultDrives {
		req := defaultDrives[i]
		drive, err := svc.DriveService.CreateDrive(ctx, manager, &req)
		if err != nil {
			lgr.Error().Err(err).Str("company", req.CompanyName).Msg("Error creating default drive")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("driveId", drive.ID).Str("company", drive.CompanyName).Msg("Default drive created")
	}
	return finalErr
}
