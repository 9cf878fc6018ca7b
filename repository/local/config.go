package local

import (
	"fmt"

	"github.com/dataops/sqlman/common"
)

type LocalConfig struct {
	Format   string `yaml:"format" json:"format"`
	DataDir  string `yaml:"data_dir" json:"data_dir"`
	DataFile string `yaml:"data_file" json:"data_file"`
}

func (config *LocalConfig) Normalize() {
	config.Format = common.GetStringwithDefault(config.Format, FORMAT_JSON)
	config.DataDir = common.GetStringwithDefault(config.DataDir, DefaultDataDir)
	config.DataFile = fmt.Sprintf("%s.%s", common.GetStringwithDefault(config.DataFile, DefaultDataFile), config.Format)
}
