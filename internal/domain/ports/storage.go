package ports

import "lavadero/internal/domain/models"

// IdentityRepository определяет интерфейс хранения идентификатора устройства.
// Реализация интерфейса находится в слое Infrastructure.
type IdentityRepository interface {
	// Load загружает идентификатор; если его нет, возвращает models.ErrNoIdentity
	Load() (*models.DeviceIdentity, error)

	// Save сохраняет идентификатор
	Save(identity *models.DeviceIdentity) error
}
