package cmd

import (
	"log"

	"github.com/corvell/imagetier/config"
	"github.com/corvell/imagetier/database/dbcore"
	"github.com/spf13/cobra"
)

// migrateCmd 按配置的数据库执行自动DDL
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migration",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		db, err := dbcore.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbcore.Close(db)

		if err := dbcore.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		log.Println("Database migration completed")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
