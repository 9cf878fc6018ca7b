package config

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dataops/sqlman/common"
	"github.com/hjson/hjson-go/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var GlobalConfig SqlManConfig

const (
	FORMAT_JSON  string = ".json"
	FORMAT_HJSON string = ".hjson"
	FORMAT_YAML  string = ".yaml"
)

type SqlManConfig struct {
	ConfigFile       string `yaml:"-" json:"-"`
	Server           SqlManServerConfig
	Check            SqlManCheckConfig
	Query            SqlManQueryConfig
	Executor         SqlManExecutorConfig
	Log              SqlManLogConfig
	PersistentConfig map[string]map[string]interface{} `yaml:"persistent_config" json:"persistent_config"`
	Version          string                            `yaml:"-" json:"-"`
}

type SqlManServerConfig struct {
	Ip               string
	Port             int
	Pprof            bool
	PersistentPolicy string `yaml:"persistent_policy" json:"persistent_policy"`
}

// SqlManCheckConfig controls the static checker. When Enforce is true,
// submitting an order with error-level findings is refused; otherwise
// the findings are attached to the order as advisory information.
type SqlManCheckConfig struct {
	Enforce bool
}

type SqlManQueryConfig struct {
	MaxRows        int `yaml:"max_rows" json:"max_rows"`
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

type SqlManExecutorConfig struct {
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds" json:"connect_timeout_seconds"`
	ExecuteTimeoutSeconds int `yaml:"execute_timeout_seconds" json:"execute_timeout_seconds"`
}

type SqlManLogConfig struct {
	Level    string
	MaxCount int `yaml:"max_count" json:"max_count"`
	MaxSize  int `yaml:"max_size" json:"max_size"`
	MaxAge   int `yaml:"max_age" json:"max_age"`
}

func fillDefault(c *SqlManConfig) {
	c.Server.Port = 8909
	c.Server.Pprof = true
	c.Server.PersistentPolicy = "local"
	c.Check.Enforce = false
	c.Query.MaxRows = 200
	c.Query.TimeoutSeconds = 30
	c.Executor.ConnectTimeoutSeconds = 5
	c.Executor.ExecuteTimeoutSeconds = 300
	c.Log.Level = "INFO"
	c.Log.MaxCount = 5
	c.Log.MaxSize = 10
	c.Log.MaxAge = 10
}

func MergeEnv() {
	common.EnvStringVar(&GlobalConfig.Server.Ip, "HOST_IP")
	common.EnvIntVar(&GlobalConfig.Server.Port, "SQLMAN_PORT")
	common.EnvStringVar(&GlobalConfig.Server.PersistentPolicy, "SQLMAN_PERSISTENT_POLICY")
}

func ParseConfigFile(p, version string) error {
	f, err := os.Open(p)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrap(err, "")
	}

	GlobalConfig.ConfigFile = p
	GlobalConfig.Version = version

	fillDefault(&GlobalConfig)
	configFmt := path.Ext(p)
	switch configFmt {
	case FORMAT_JSON, FORMAT_HJSON:
		err = hjson.Unmarshal(data, &GlobalConfig)
	case FORMAT_YAML:
		err = yaml.Unmarshal(data, &GlobalConfig)
	default:
		return fmt.Errorf("config format %s unsupported yet", configFmt)
	}
	if err != nil {
		return err
	}
	MergeEnv()
	return nil
}

func MarshConfigFile() error {
	out, err := yaml.Marshal(GlobalConfig)
	if err != nil {
		return errors.Wrap(err, "")
	}

	localFd, err := os.OpenFile(GlobalConfig.ConfigFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer localFd.Close()

	if _, err = localFd.Write(out); err != nil {
		return errors.Wrap(err, "")
	}

	return nil
}

func GetWorkDirectory() string {
	dir, err := filepath.Abs(filepath.Dir(GlobalConfig.ConfigFile))
	if err != nil {
		return ""
	}

	return strings.Replace(filepath.Dir(dir), "\\", "/", -1)
}
