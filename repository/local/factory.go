package local

import "github.com/dataops/sqlman/repository"

func init() {
	repository.RegistePersistent(NewFactory)
}

type Factory struct{}

func (factory *Factory) CreatePersistent() repository.PersistentMgr {
	return &LocalPersistent{}
}

func (factory *Factory) GetPersistentName() string {
	return LocalPersistentName
}

func NewFactory() repository.PersistentFactory {
	return &Factory{}
}
