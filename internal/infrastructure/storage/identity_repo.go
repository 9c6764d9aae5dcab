package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"lavadero/internal/domain/models"
	"lavadero/internal/domain/ports"
)

// FileIdentityRepository реализует интерфейс ports.IdentityRepository с использованием JSON-файла для хранения.
type FileIdentityRepository struct {
	mu       sync.Mutex
	filePath string
}

// NewFileIdentityRepository создает новый экземпляр FileIdentityRepository с указанным путем к файлу.
func NewFileIdentityRepository(filePath string) ports.IdentityRepository {
	return &FileIdentityRepository{filePath: filePath}
}

// Load загружает идентификатор из файла.
func (r *FileIdentityRepository) Load() (*models.DeviceIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrNoIdentity
		}
		return nil, fmt.Errorf("ошибка чтения файла идентификатора: %w", err)
	}

	var identity models.DeviceIdentity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("ошибка разбора JSON: %w", err)
	}
	if identity.ID == "" {
		return nil, models.ErrNoIdentity
	}
	return &identity, nil
}

// Save сохраняет идентификатор в JSON-файл.
func (r *FileIdentityRepository) Save(identity *models.DeviceIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Создаем директорию, если она не существует
	if err := os.MkdirAll(filepath.Dir(r.filePath), 0755); err != nil {
		return fmt.Errorf("ошибка создания директории: %w", err)
	}

	jsonData, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	// запись через временный файл и rename
	tmp := r.filePath + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла идентификатора: %w", err)
	}
	if err := os.Rename(tmp, r.filePath); err != nil {
		return fmt.Errorf("ошибка записи файла идентификатора: %w", err)
	}
	return nil
}

// LoadOrCreate возвращает сохранённый идентификатор или создаёт новый UUIDv4.
func LoadOrCreate(repo ports.IdentityRepository) (*models.DeviceIdentity, bool, error) {
	identity, err := repo.Load()
	if err == nil {
		return identity, false, nil
	}
	if !errors.Is(err, models.ErrNoIdentity) {
		return nil, false, err
	}

	identity = &models.DeviceIdentity{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Save(identity); err != nil {
		return nil, false, err
	}
	return identity, true, nil
}
