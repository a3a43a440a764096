package roster

import "context"

// Repository provides persistence for settings, people and devices.
type Repository interface {
	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, settings Settings) error

	ListPeople(ctx context.Context) ([]Person, error)
	GetPerson(ctx context.Context, id string) (*Person, error)
	CreatePerson(ctx context.Context, p *Person) error
	UpdatePerson(ctx context.Context, p *Person) error
	DeletePerson(ctx context.Context, id string) error
	ResetUsage(ctx context.Context) error

	ListDevices(ctx context.Context) ([]Device, error)
	CreateDevice(ctx context.Context, d *Device) error
	DeleteDevice(ctx context.Context, id string) error
}
