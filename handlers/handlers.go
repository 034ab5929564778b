package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-game-config/configuration"
)

const (
	msgGetFailed    = "An error occurred while retrieving the configuration"
	msgListFailed   = "An error occurred while retrieving configurations"
	msgCreateFailed = "An error occurred while creating the configuration"
	msgUpdateFailed = "An error occurred while updating the configuration"
	msgDeleteFailed = "An error occurred while deleting the configuration"
	msgPingFailed   = "Database connection test failed"
)

// ConfigurationGetter loads a record by id.
type ConfigurationGetter interface {
	GetByID(ctx context.Context, id string) (*configuration.Record, error)
}

// ConfigurationNameLookup loads a record by name.
type ConfigurationNameLookup interface {
	GetByName(ctx context.Context, name string) (*configuration.Record, error)
}

// ConfigurationLister lists records.
type ConfigurationLister interface {
	GetAll(ctx context.Context, opts configuration.ListOptions) ([]configuration.Record, error)
}

// ConfigurationCreator stores new records.
type ConfigurationCreator interface {
	Create(ctx context.Context, candidate configuration.Record) (*configuration.Record, error)
}

// ConfigurationUpdater overwrites existing records.
type ConfigurationUpdater interface {
	Update(ctx context.Context, candidate configuration.Record) (*configuration.Record, error)
}

// ConfigurationDeleter removes records.
type ConfigurationDeleter interface {
	Delete(ctx context.Context, id string) error
}

// DatabasePinger checks the backing store.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// GetConfiguration returns a single record. A missing id is a failure with
// a not found message.
type GetConfiguration struct {
	Service ConfigurationGetter
	Logger  *zap.Logger
}

func (h *GetConfiguration) Handle(ctx context.Context, id string) (resp Response[*configuration.Record]) {
	defer recoverInto(&resp, msgGetFailed, logger(h.Logger))

	rec, err := h.Service.GetByID(ctx, id)
	if err != nil {
		logger(h.Logger).Warn("get configuration failed", zap.String("id", id), zap.Error(err))
		return fail[*configuration.Record](err, msgGetFailed)
	}
	if rec == nil {
		return fail[*configuration.Record](&configuration.NotFoundError{ID: id}, msgGetFailed)
	}
	return ok(rec)
}

// GetConfigurationByName returns the record with the given name.
type GetConfigurationByName struct {
	Service ConfigurationNameLookup
	Logger  *zap.Logger
}

func (h *GetConfigurationByName) Handle(ctx context.Context, name string) (resp Response[*configuration.Record]) {
	defer recoverInto(&resp, msgGetFailed, logger(h.Logger))

	rec, err := h.Service.GetByName(ctx, name)
	if err != nil {
		logger(h.Logger).Warn("get configuration by name failed", zap.String("name", name), zap.Error(err))
		return fail[*configuration.Record](err, msgGetFailed)
	}
	if rec == nil {
		notFound := fmt.Errorf("%w: Configuration with name '%s' not found", configuration.ErrNotFound, name)
		resp = fail[*configuration.Record](notFound, msgGetFailed)
		resp.Message = fmt.Sprintf("Configuration with name '%s' not found", name)
		return resp
	}
	return ok(rec)
}

// ListConfigurations returns records filtered and paginated by the store.
type ListConfigurations struct {
	Service ConfigurationLister
	Logger  *zap.Logger
}

func (h *ListConfigurations) Handle(ctx context.Context, opts configuration.ListOptions) (resp Response[[]configuration.Record]) {
	defer recoverInto(&resp, msgListFailed, logger(h.Logger))

	records, err := h.Service.GetAll(ctx, opts)
	if err != nil {
		logger(h.Logger).Error("Error retrieving configurations", zap.Error(err))
		return fail[[]configuration.Record](err, msgListFailed)
	}
	if records == nil {
		records = []configuration.Record{}
	}
	return ok(records)
}

// CreateCommand carries the fields a client may set on create.
type CreateCommand struct {
	Name       string `json:"name"`
	JSONConfig string `json:"jsonConfig"`
}

// CreateConfiguration stores a new record.
type CreateConfiguration struct {
	Service ConfigurationCreator
	Logger  *zap.Logger
}

func (h *CreateConfiguration) Handle(ctx context.Context, cmd CreateCommand) (resp Response[*configuration.Record]) {
	defer recoverInto(&resp, msgCreateFailed, logger(h.Logger))

	created, err := h.Service.Create(ctx, configuration.Record{Name: cmd.Name, JSONConfig: cmd.JSONConfig})
	if err != nil {
		logger(h.Logger).Warn("create configuration failed", zap.String("name", cmd.Name), zap.Error(err))
		return fail[*configuration.Record](err, msgCreateFailed)
	}
	return ok(created)
}

// UpdateConfiguration overwrites an existing record.
type UpdateConfiguration struct {
	Service ConfigurationUpdater
	Logger  *zap.Logger
}

func (h *UpdateConfiguration) Handle(ctx context.Context, rec configuration.Record) (resp Response[*configuration.Record]) {
	defer recoverInto(&resp, msgUpdateFailed, logger(h.Logger))

	updated, err := h.Service.Update(ctx, rec)
	if err != nil {
		logger(h.Logger).Warn("update configuration failed", zap.String("id", rec.ID), zap.Error(err))
		return fail[*configuration.Record](err, msgUpdateFailed)
	}
	return ok(updated)
}

// DeleteConfiguration removes a record.
type DeleteConfiguration struct {
	Service ConfigurationDeleter
	Logger  *zap.Logger
}

func (h *DeleteConfiguration) Handle(ctx context.Context, id string) (resp Response[Empty]) {
	defer recoverInto(&resp, msgDeleteFailed, logger(h.Logger))

	if err := h.Service.Delete(ctx, id); err != nil {
		logger(h.Logger).Warn("delete configuration failed", zap.String("id", id), zap.Error(err))
		return fail[Empty](err, msgDeleteFailed)
	}
	return ok(Empty{})
}

// TestDatabase checks store connectivity.
type TestDatabase struct {
	Service DatabasePinger
	Logger  *zap.Logger
}

func (h *TestDatabase) Handle(ctx context.Context) (resp Response[Empty]) {
	defer recoverInto(&resp, msgPingFailed, logger(h.Logger))

	if err := h.Service.Ping(ctx); err != nil {
		logger(h.Logger).Error(msgPingFailed, zap.Error(err))
		return fail[Empty](err, msgPingFailed)
	}
	return ok(Empty{})
}

// Service is everything the handler set needs from the configuration service.
type Service interface {
	ConfigurationGetter
	ConfigurationNameLookup
	ConfigurationLister
	ConfigurationCreator
	ConfigurationUpdater
	ConfigurationDeleter
	DatabasePinger
}

// Set groups one handler per operation.
type Set struct {
	Get       *GetConfiguration
	GetByName *GetConfigurationByName
	List      *ListConfigurations
	Create    *CreateConfiguration
	Update    *UpdateConfiguration
	Delete    *DeleteConfiguration
	TestDB    *TestDatabase
}

// NewSet wires every handler to svc.
func NewSet(svc Service, log *zap.Logger) *Set {
	return &Set{
		Get:       &GetConfiguration{Service: svc, Logger: log},
		GetByName: &GetConfigurationByName{Service: svc, Logger: log},
		List:      &ListConfigurations{Service: svc, Logger: log},
		Create:    &CreateConfiguration{Service: svc, Logger: log},
		Update:    &UpdateConfiguration{Service: svc, Logger: log},
		Delete:    &DeleteConfiguration{Service: svc, Logger: log},
		TestDB:    &TestDatabase{Service: svc, Logger: log},
	}
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
