package cmd

import (
	"log"

	"github.com/corvell/imagetier/config"
	"github.com/corvell/imagetier/database/dbcore"
	"github.com/corvell/imagetier/database/models"
	"github.com/corvell/imagetier/database/repo/accounts"
	cryptoutils "github.com/corvell/imagetier/utils/crypto"
	"github.com/spf13/cobra"
)

// useraddCmd 创建用户，可选择直接挂接分组
var useraddCmd = &cobra.Command{
	Use:   "useradd",
	Short: "Create a user account",
	Run: func(cmd *cobra.Command, args []string) {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		isAdmin, _ := cmd.Flags().GetBool("admin")
		groupNames, _ := cmd.Flags().GetStringSlice("groups")

		if username == "" || password == "" {
			log.Fatal("Both --username and --password are required")
		}

		config.InitConfig()
		db, err := dbcore.Open(config.Get())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbcore.Close(db)

		if err := dbcore.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		hashed, err := cryptoutils.GenerateFromPassword(password)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		repo := accounts.NewRepository(db)
		user := &models.User{
			Username: username,
			Password: hashed,
			IsAdmin:  isAdmin,
		}
		if err := repo.CreateUser(user); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		if err := repo.AssignGroups(user, groupNames); err != nil {
			log.Fatalf("Failed to assign groups: %v", err)
		}

		log.Printf("Created user '%s' (admin: %v, groups: %v)", username, isAdmin, groupNames)
	},
}

func init() {
	rootCmd.AddCommand(useraddCmd)

	useraddCmd.Flags().String("username", "", "Username for the new account")
	useraddCmd.Flags().String("password", "", "Password for the new account")
	useraddCmd.Flags().Bool("admin", false, "Grant administrator role")
	useraddCmd.Flags().StringSlice("groups", nil, "Group names to assign (must exist)")
}
