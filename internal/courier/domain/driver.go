// Package domain defines the courier-side entities held in the local store:
// drivers and delivery orders. These are the entities whose mutations flow
// through the sync queue when the backend is unreachable.
package domain

import "time"

// Driver is a courier driver profile in the local store. IDs are supplied by
// the client so records created offline keep a stable identity across sync.
type Driver struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Vehicle    string     `json:"vehicle"`
	Available  bool       `json:"available"`
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	LocationAt *time.Time `json:"location_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Location is a GPS position report.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Recorded  time.Time `json:"recorded"`
}

// Valid reports whether the coordinates are on the globe.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}
