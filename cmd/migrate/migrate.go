package migrate

import (
	"fmt"
	"io"
	"os"

	"github.com/hjson/hjson-go/v4"
	"github.com/pkg/errors"

	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/repository"
	_ "github.com/dataops/sqlman/repository/local"
	_ "github.com/dataops/sqlman/repository/mysql"
	_ "github.com/dataops/sqlman/repository/postgres"
)

type PersistentConfig struct {
	Policy string
	Config map[string]interface{}
}

type MigrateConfig struct {
	Source string
	Target string
	PsConf map[string]PersistentConfig `json:"persistent_config"`
}

var (
	psrc repository.PersistentMgr
	pdst repository.PersistentMgr
)

func ParseConfig(conf string) (MigrateConfig, error) {
	var config MigrateConfig
	f, err := os.Open(conf)
	if err != nil {
		return MigrateConfig{}, errors.Wrap(err, "")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return MigrateConfig{}, errors.Wrap(err, "")
	}
	if len(data) == 0 {
		return MigrateConfig{}, errors.New("empty config file")
	}
	err = hjson.Unmarshal(data, &config)
	if err != nil {
		return MigrateConfig{}, errors.Wrap(err, "")
	}
	return config, nil
}

func PersistentCheck(config MigrateConfig, typo string) (repository.PersistentMgr, error) {
	var ps repository.PersistentMgr
	conf, ok := config.PsConf[typo]
	if !ok {
		return nil, errors.Errorf("empty persistent config %s", typo)
	}
	ps = repository.GetPersistentByName(conf.Policy)
	if ps == nil {
		return nil, errors.Errorf("invalid persistent policy: %s", conf.Policy)
	}
	pcfg := ps.UnmarshalConfig(conf.Config)
	if err := ps.Init(pcfg); err != nil {
		return nil, errors.Errorf("init persistent failed: %v", err)
	}
	return ps, nil
}

// Migrate copies every record from the source store into the target. The
// target write runs inside a transaction, a failing copy leaves it empty.
func Migrate() error {
	dataSources, err := psrc.GetAllDataSources()
	if err != nil {
		return err
	}
	if len(dataSources) == 0 {
		log.Logger.Warnf("data sources have 0 records, will migrate nothing")
	}

	orders, err := psrc.GetAllOrders()
	if err != nil {
		return err
	}

	history, err := psrc.GetQueryHistory(0)
	if err != nil {
		return err
	}

	if err = pdst.Begin(); err != nil {
		return errors.Wrap(err, "")
	}
	for _, ds := range dataSources {
		if err = pdst.CreateDataSource(ds); err != nil {
			_ = pdst.Rollback()
			return errors.Wrap(err, "")
		}
	}
	for _, order := range orders {
		if err = pdst.CreateOrder(order); err != nil {
			_ = pdst.Rollback()
			return errors.Wrap(err, "")
		}
	}
	for _, record := range history {
		if err = pdst.CreateQueryRecord(record); err != nil {
			_ = pdst.Rollback()
			return errors.Wrap(err, "")
		}
	}
	if err = pdst.Commit(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func MigrateHandle(conf string) {
	config, err := ParseConfig(conf)
	if err != nil {
		fmt.Printf("parse config file %s failed: %v\n", conf, err)
		return
	}
	if psrc, err = PersistentCheck(config, config.Source); err != nil {
		fmt.Printf("source persistent invalid: %v\n", err)
		return
	}
	if pdst, err = PersistentCheck(config, config.Target); err != nil {
		fmt.Printf("target persistent invalid: %v\n", err)
		return
	}
	if err = Migrate(); err != nil {
		fmt.Printf("migrate failed: %v\n", err)
		return
	}
	fmt.Println("migrate success")
}
