package seeder

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-basic/uuid"

	"github.com/dataops/sqlman/config"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository"
	"github.com/dataops/sqlman/service/checker"
)

type seedDataSource struct {
	name     string
	kind     string
	host     string
	database string
}

var seedDataSources = []seedDataSource{
	{"order-db-master", model.EngineMySQL, "192.168.1.30", "orders"},
	{"order-db-slave", model.EngineMySQL, "192.168.1.31", "orders"},
	{"billing-db", model.EnginePostgres, "192.168.1.32", "billing"},
	{"report-ch", model.EngineClickHouse, "192.168.2.10", "reports"},
	{"legacy-crm", model.EngineSQLServer, "192.168.3.15", "crm"},
}

var seedStatements = []struct {
	title   string
	sqlType string
	sql     string
}{
	{"add index on orders.user_id", model.SqlTypeDDL, "ALTER TABLE orders ADD INDEX idx_user_id(user_id)"},
	{"create coupon table", model.SqlTypeDDL, "CREATE TABLE coupon (id BIGINT PRIMARY KEY, code VARCHAR(32), discount DECIMAL(5,2))"},
	{"fix duplicated invoice rows", model.SqlTypeDML, "DELETE FROM invoice WHERE id IN (1001, 1002, 1003)"},
	{"backfill order channel", model.SqlTypeDML, "UPDATE orders SET channel = 'web' WHERE channel IS NULL AND create_time < '2026-01-01'"},
	{"archive completed orders", model.SqlTypeDML, "INSERT INTO orders_archive (id, user_id, amount) SELECT id, user_id, amount FROM orders WHERE status = 'done'"},
}

var seedUsers = []string{"zhangsan", "lisi", "wangwu", "devops-bot"}

// Seed fills the store with demo data sources, orders in assorted
// workflow states, and a few workbench history entries. Run it against
// an empty store, duplicate names are refused.
func Seed(ps repository.PersistentMgr) error {
	chk := checker.NewChecker()
	statuses := []model.OrderStatus{
		model.OrderStatusDraft,
		model.OrderStatusPendingReview,
		model.OrderStatusApproved,
		model.OrderStatusRejected,
		model.OrderStatusSucceeded,
	}

	var dsIds []string
	for _, seed := range seedDataSources {
		now := time.Now()
		ds := model.DataSource{
			Id:              uuid.New(),
			Name:            seed.name,
			Kind:            seed.kind,
			Host:            seed.host,
			Port:            model.EngineDefaultPort[seed.kind],
			User:            "sqlman",
			Password:        "sqlman@demo",
			Charset:         "utf8mb4",
			DefaultDatabase: seed.database,
			Remark:          "demo data source",
			Reachability:    model.ReachabilityUnknown,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := ps.CreateDataSource(ds); err != nil {
			return err
		}
		dsIds = append(dsIds, ds.Id)
	}
	fmt.Printf("seeded %d data sources\n", len(dsIds))

	count := 0
	for i, seed := range seedStatements {
		for _, status := range statuses {
			statements := checker.SplitStatements(seed.sql)
			check := chk.Check(statements, seed.sqlType)
			submitter := seedUsers[rand.Intn(len(seedUsers))]
			order := model.SqlOrder{
				OrderId:      uuid.New(),
				Title:        seed.title,
				DataSourceId: dsIds[i%len(dsIds)],
				SqlType:      seed.sqlType,
				Statements:   statements,
				Submitter:    submitter,
				Status:       status,
				CheckResult:  &check,
				CreatedAt:    time.Now().Add(-time.Duration(rand.Intn(720)) * time.Hour),
			}
			if status != model.OrderStatusDraft && status != model.OrderStatusPendingReview {
				reviewedAt := order.CreatedAt.Add(time.Hour)
				reviewer := submitter
				for reviewer == submitter {
					reviewer = seedUsers[rand.Intn(len(seedUsers))]
				}
				order.Reviewer = reviewer
				order.ReviewedAt = &reviewedAt
				if status == model.OrderStatusRejected {
					order.ReviewComment = "please add a WHERE clause"
				} else {
					order.ReviewComment = "looks good"
				}
			}
			if status == model.OrderStatusSucceeded {
				executedAt := order.CreatedAt.Add(2 * time.Hour)
				order.ExecutedAt = &executedAt
				order.AffectedRows = int64(rand.Intn(5000))
				order.DurationMs = int64(rand.Intn(3000))
			}
			if err := ps.CreateOrder(order); err != nil {
				return err
			}
			count++
		}
	}
	fmt.Printf("seeded %d orders\n", count)

	queries := []string{
		"SELECT id, user_id, amount FROM orders WHERE status = 'pending'",
		"SHOW TABLES",
		"SELECT count(*) FROM invoice",
		"EXPLAIN SELECT * FROM orders WHERE user_id = 42",
	}
	for i, statement := range queries {
		record := model.QueryRecord{
			QueryId:      uuid.New(),
			DataSourceId: dsIds[i%len(dsIds)],
			Database:     "orders",
			Statement:    statement,
			Submitter:    seedUsers[rand.Intn(len(seedUsers))],
			RowCount:     rand.Intn(200),
			DurationMs:   int64(rand.Intn(500)),
			CreatedAt:    time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour),
		}
		if err := ps.CreateQueryRecord(record); err != nil {
			return err
		}
	}
	fmt.Printf("seeded %d query records\n", len(queries))
	return nil
}

func SeedHandle(conf string) {
	if err := config.ParseConfigFile(conf, ""); err != nil {
		fmt.Printf("parse config file %s failed: %v\n", conf, err)
		return
	}
	if err := repository.InitPersistent(); err != nil {
		fmt.Printf("init persistent failed: %v\n", err)
		return
	}
	if err := Seed(repository.Ps); err != nil {
		fmt.Printf("seed failed: %v\n", err)
		return
	}
	fmt.Println("seed success")
}
