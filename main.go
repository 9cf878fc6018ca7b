package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dataops/sqlman/common"
	"github.com/dataops/sqlman/config"
	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/repository"
	_ "github.com/dataops/sqlman/repository/local"
	_ "github.com/dataops/sqlman/repository/mysql"
	_ "github.com/dataops/sqlman/repository/postgres"
	"github.com/dataops/sqlman/server"
	"github.com/dataops/sqlman/service/checker"
	"github.com/dataops/sqlman/service/executor"
	"github.com/dataops/sqlman/service/registry"
	"github.com/dataops/sqlman/service/workbench"
	"github.com/dataops/sqlman/service/workflow"
)

var (
	Version         = ""
	BuildTimeStamp  = ""
	GitCommitHash   = ""
	ConfigFilePath  = ""
	LogFilePath     = ""
	EncryptPassword = ""
)

func main() {
	InitCmd()
	if err := config.ParseConfigFile(ConfigFilePath, Version); err != nil {
		fmt.Printf("Parse config file %s fail: %v\n", ConfigFilePath, err)
		os.Exit(1)
	}
	log.InitLogger(LogFilePath, &config.GlobalConfig.Log)

	log.Logger.Info("sqlman starting...")
	log.Logger.Infof("version: %v", Version)
	log.Logger.Infof("build time: %v", BuildTimeStamp)
	log.Logger.Infof("git commit hash: %v", GitCommitHash)
	DumpConfig(config.GlobalConfig)

	if err := repository.InitPersistent(); err != nil {
		log.Logger.Fatalf("init persistent failed:%v", err)
	}

	conf := &config.GlobalConfig
	exec := executor.NewSqlExecutor()
	reg := registry.NewRegistry(repository.Ps, exec, time.Duration(conf.Executor.ConnectTimeoutSeconds)*time.Second)
	chk := checker.NewChecker()
	engine := workflow.NewEngine(repository.Ps, reg, chk, exec, conf.Check.Enforce,
		time.Duration(conf.Executor.ExecuteTimeoutSeconds)*time.Second)
	wb := workbench.NewWorkbench(repository.Ps, reg, exec, conf.Query.MaxRows,
		time.Duration(conf.Query.TimeoutSeconds)*time.Second)

	svr := server.NewApiServer(conf, reg, engine, chk, wb)
	if err := svr.Start(); err != nil {
		log.Logger.Fatalf("start api server fail: %v", err)
	}
	log.Logger.Infof("api server listening on %s:%d", conf.Server.Ip, conf.Server.Port)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalCh
	log.Logger.Infof("got signal %v, shutting down", sig)
	if err := svr.Stop(); err != nil {
		log.Logger.Errorf("stop api server fail: %v", err)
	}
	log.Logger.Info("sqlman exiting...")
}

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Long:  "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("version: %v\n", Version)
		fmt.Printf("build time: %v\n", BuildTimeStamp)
		fmt.Printf("git commit hash: %v\n", GitCommitHash)
		os.Exit(0)
	},
}

func InitCmd() {
	var rootCmd = &cobra.Command{
		Use: "sqlman",
	}

	rootCmd.PersistentFlags().StringVarP(&ConfigFilePath, "conf", "c", "conf/sqlman.hjson", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&LogFilePath, "log", "l", "logs/sqlman.log", "Log file path")
	rootCmd.PersistentFlags().StringVarP(&EncryptPassword, "encrypt", "e", "", "encrypt password")
	rootCmd.AddCommand(VersionCmd)

	rootCmd.SetUsageFunc(func(cmd *cobra.Command) error {
		return nil
	})
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:   "help",
		Short: "Help about any command",
		Long:  "Help about any command",
		Run: func(cmd *cobra.Command, args []string) {
			rootCmd.SetUsageFunc(nil)
			_ = rootCmd.Help()
			os.Exit(0)
		},
	})
	_ = rootCmd.Execute()
	if EncryptPassword != "" {
		fmt.Println(common.AesEncryptECB(EncryptPassword))
		os.Exit(0)
	}
	fmt.Println("sqlman manages the lifecycle of SQL changes")
	fmt.Printf("sqlman-%v is running...\n", Version)
	fmt.Printf("See more information in %s\n", LogFilePath)
}

func DumpConfig(conf config.SqlManConfig) {
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		log.Logger.Errorf("marshal error: %v", err)
		return
	}
	log.Logger.Infof("%v", string(data))
}
