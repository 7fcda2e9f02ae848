package cmd

import (
	"log"

	"github.com/corvell/imagetier/config"
	"github.com/corvell/imagetier/database/dbcore"
	"github.com/corvell/imagetier/database/models"
	groupsRepo "github.com/corvell/imagetier/database/repo/groups"
	"github.com/spf13/cobra"
)

// groupaddCmd 创建能力分组
var groupaddCmd = &cobra.Command{
	Use:   "groupadd",
	Short: "Create a capability group",
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		heights, _ := cmd.Flags().GetIntSlice("heights")
		allowOriginal, _ := cmd.Flags().GetBool("allow-original")
		allowLinks, _ := cmd.Flags().GetBool("allow-expiring-links")

		if name == "" {
			log.Fatal("--name is required")
		}
		for _, h := range heights {
			if h <= 0 {
				log.Fatalf("Invalid thumbnail height %d: must be positive", h)
			}
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

		repo := groupsRepo.NewRepository(db)
		group := &models.Group{
			Name:               name,
			AllowOriginalImage: allowOriginal,
			AllowExpiringLink:  allowLinks,
		}
		if err := repo.CreateGroup(group, heights); err != nil {
			log.Fatalf("Failed to create group: %v", err)
		}

		log.Printf("Created group '%s' (heights: %v, original: %v, expiring links: %v)",
			name, heights, allowOriginal, allowLinks)
	},
}

func init() {
	rootCmd.AddCommand(groupaddCmd)

	groupaddCmd.Flags().String("name", "", "Group name")
	groupaddCmd.Flags().IntSlice("heights", nil, "Thumbnail heights this group may request")
	groupaddCmd.Flags().Bool("allow-original", false, "Allow members to access original images")
	groupaddCmd.Flags().Bool("allow-expiring-links", false, "Allow members to mint expiring links")
}
