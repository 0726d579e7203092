package server

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-salvage-market/internal/utils"
	"github.com/jrsteele09/go-salvage-market/users"
	"github.com/jrsteele09/go-salvage-market/vehicles"
)

// InitialiseSystem creates the admin account from config and, in DEV, a demo catalog
func (s *Server) InitialiseSystem() error {
	generatedPassword, err := s.createSystemAdmin(s.config.GetSystemAdminEmail(), s.config.GetSystemAdminPassword())
	if err != nil {
		return errors.Wrap(err, "[Server InitialiseSystem] failed to bootstrap admin")
	}
	if generatedPassword != "" {
		log.Info().Msg("👤 System Admin Credentials:")
		log.Info().Msgf("   Email:       %s", s.config.GetSystemAdminEmail())
		log.Info().Msgf("   Password:    %s", generatedPassword)
	}

	if s.env == "DEV" {
		if err := s.seedCatalog(); err != nil {
			return errors.Wrap(err, "[Server InitialiseSystem] failed to seed catalog")
		}
	}
	return nil
}

// createSystemAdmin returns the generated password on first creation, empty when the admin exists
// or the password came from config
func (s *Server) createSystemAdmin(email, password string) (generatedPassword string, err error) {
	if existing, err := s.repos.Users.GetByEmail(email); err == nil && existing.IsAdmin() {
		return "", nil
	}

	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", errors.Wrap(err, "[server createSystemAdmin] failed to generate password")
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return "", errors.Wrap(err, "[server createSystemAdmin] failed to hash password")
	}

	now := s.nowFunc()
	admin := &users.User{
		Email:        email,
		Role:         users.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		PasswordHash: passwordHash,
		Name:         "System Administrator",
	}
	if err := s.repos.Users.Upsert(admin); err != nil {
		return "", errors.Wrap(err, "[server createSystemAdmin] failed to create admin")
	}
	return generatedPassword, nil
}

func (s *Server) seedCatalog() error {
	existing, err := s.repos.Vehicles.List(0, 1)
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, v := range demoVehicles() {
		if err := s.repos.Vehicles.Upsert(v); err != nil {
			return err
		}
	}
	return nil
}

func demoVehicles() []*vehicles.Vehicle {
	return []*vehicles.Vehicle{
		{
			ID: "demo-corolla", Make: "Toyota", Model: "Corolla", Year: 2019,
			Condition: vehicles.ConditionDamaged, FuelType: vehicles.FuelGas,
			Transmission: vehicles.TransmissionAutomatic, VehicleType: vehicles.VehicleTypePassenger,
			Price: 4200, Mileage: utils.Ptr(86000), IsActive: true, IsFeatured: true,
			Description: "Front end damage, runs and drives",
			Features:    vehicles.Features{Airbags: true, ABSBrakes: true, AirConditioning: true},
		},
		{
			ID: "demo-transit", Make: "Ford", Model: "Transit", Year: 2016,
			Condition: vehicles.ConditionAccidented, FuelType: vehicles.FuelDiesel,
			Transmission: vehicles.TransmissionManual, VehicleType: vehicles.VehicleTypeVan,
			Price: 3100, Mileage: utils.Ptr(190000), IsActive: true,
			Description: "Side impact, engine intact",
		},
		{
			ID: "demo-leaf", Make: "Nissan", Model: "Leaf", Year: 2020,
			Condition: vehicles.ConditionUsed, FuelType: vehicles.FuelElectric,
			Transmission: vehicles.TransmissionCVT, VehicleType: vehicles.VehicleTypePassenger,
			Price: 7900, Mileage: utils.Ptr(42000), IsActive: true,
			Description: "Flood damage to the interior",
		},
	}
}
