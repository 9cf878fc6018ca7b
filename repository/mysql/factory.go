package mysql

import "github.com/dataops/sqlman/repository"

func init() {
	repository.RegistePersistent(NewFactory)
}

type Factory struct{}

func (factory *Factory) CreatePersistent() repository.PersistentMgr {
	return &MysqlPersistent{}
}

func (factory *Factory) GetPersistentName() string {
	return MySQLPersistentName
}

func NewFactory() repository.PersistentFactory {
	return &Factory{}
}
