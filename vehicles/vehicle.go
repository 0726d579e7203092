// Package vehicles holds the listing payload carried by favorites. The Car Listing
// service owns these records; this module only stores and displays them.
package vehicles

import (
	"strconv"
	"time"
)

type Condition string

const (
	ConditionDamaged    Condition = "DAMAGED"
	ConditionUsed       Condition = "USED"
	ConditionAccidented Condition = "ACCIDENTED"
	ConditionDerelict   Condition = "DERELICT"
)

type FuelType string

const (
	FuelGas      FuelType = "GAS"
	FuelHybrid   FuelType = "HYBRID"
	FuelDiesel   FuelType = "DIESEL"
	FuelElectric FuelType = "ELECTRIC"
)

type Transmission string

const (
	TransmissionManual    Transmission = "MANUAL"
	TransmissionAutomatic Transmission = "AUTOMATIC"
	TransmissionCVT       Transmission = "CVT"
)

type VehicleType string

const (
	VehicleTypeVan       VehicleType = "VAN"
	VehicleTypeMotor     VehicleType = "MOTOR"
	VehicleTypePassenger VehicleType = "PASSENGER"
	VehicleTypeTruck     VehicleType = "TRUCK"
)

type Image struct {
	ID           string    `json:"id"`
	VehicleID    string    `json:"carId"`
	URL          string    `json:"imageUrl"`
	AltText      string    `json:"altText,omitempty"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Features struct {
	Airbags         bool `json:"airbags"`
	ABSBrakes       bool `json:"absBrakes"`
	AirConditioning bool `json:"airConditioning"`
	PowerSteering   bool `json:"powerSteering"`
	CentralLocking  bool `json:"centralLocking"`
	ElectricWindows bool `json:"electricWindows"`
}

// Dealer is the listing's seller reference
type Dealer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

type Vehicle struct {
	ID           string       `json:"id"`
	DealerID     string       `json:"dealerId"`
	Make         string       `json:"make"`
	Model        string       `json:"model"`
	Year         int          `json:"year"`
	FuelType     FuelType     `json:"fuelType,omitempty"`
	Transmission Transmission `json:"transmission,omitempty"`
	VehicleType  VehicleType  `json:"vehicleType,omitempty"`
	Condition    Condition    `json:"condition"`
	Price        float64      `json:"price"`
	Mileage      *int         `json:"mileage,omitempty"`
	Description  string       `json:"description,omitempty"`
	Images       []Image      `json:"images"`
	Features     Features     `json:"features"`
	IsFeatured   bool         `json:"isFeatured"`
	IsActive     bool         `json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Dealer       *Dealer      `json:"dealer,omitempty"`
}

// Title is the short "2019 Toyota Corolla" label used in lists
func (v Vehicle) Title() string {
	if v.Year == 0 {
		return v.Make + " " + v.Model
	}
	return strconv.Itoa(v.Year) + " " + v.Make + " " + v.Model
}
