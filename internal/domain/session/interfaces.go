package session

import "context"

// Repository provides persistence for device state, active sessions and
// local device identity.
type Repository interface {
	SaveDeviceState(ctx context.Context, deviceID string, st *DeviceState) error
	GetDeviceState(ctx context.Context, deviceID string) (*DeviceState, error)
	DeleteDeviceState(ctx context.Context, deviceID string) error

	UpsertActive(ctx context.Context, s *ActiveSession) error
	ListActive(ctx context.Context) ([]ActiveSession, error)
	DeleteActive(ctx context.Context, deviceID string) error

	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
}
