package postgres

import "github.com/dataops/sqlman/repository"

func init() {
	repository.RegistePersistent(NewFactory)
}

type Factory struct{}

func (factory *Factory) CreatePersistent() repository.PersistentMgr {
	return &PostgresPersistent{}
}

func (factory *Factory) GetPersistentName() string {
	return PostgresPersistentName
}

func NewFactory() repository.PersistentFactory {
	return &Factory{}
}
