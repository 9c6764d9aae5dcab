package models

import (
	"errors"
	"time"
)

var ErrNoIdentity = errors.New("device identity not found")

// DeviceIdentity устойчивый идентификатор киоска
type DeviceIdentity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
