package main

/*
sqlmanctl migrate -c /etc/sqlman/conf/migrate.hjson
sqlmanctl seed -c /etc/sqlman/conf/sqlman.hjson
sqlmanctl encrypt <password>
*/

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/dataops/sqlman/cmd/migrate"
	"github.com/dataops/sqlman/cmd/seeder"
	"github.com/dataops/sqlman/common"
	"github.com/dataops/sqlman/log"
)

var (
	migrateCmd = kingpin.Command("migrate", "migrate records from one persistent policy to another")
	m_conf     = migrateCmd.Flag("conf", "migrate config file path").Default("/etc/sqlman/conf/migrate.hjson").Short('c').String()

	seedCmd = kingpin.Command("seed", "fill the store with demo data")
	s_conf  = seedCmd.Flag("conf", "config file path").Default("/etc/sqlman/conf/sqlman.hjson").Short('c').String()

	encryptCmd = kingpin.Command("encrypt", "encrypt a data source password")
	e_plain    = encryptCmd.Arg("password", "plaintext password").Required().String()
)

func main() {
	log.InitLoggerConsole()
	switch kingpin.Parse() {
	case "migrate":
		migrate.MigrateHandle(*m_conf)
	case "seed":
		seeder.SeedHandle(*s_conf)
	case "encrypt":
		fmt.Println(common.AesEncryptECB(*e_plain))
	}
}
