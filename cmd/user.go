package cmd

import (
	"log"

	"github.com/anoixa/image-tier/config"
	"github.com/anoixa/image-tier/database"
	"github.com/anoixa/image-tier/database/repo/users"
	"github.com/anoixa/image-tier/internal/auth"
	"github.com/spf13/cobra"
)

// userCmd 用户管理命令
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management tools",
}

// userCreateCmd 创建用户
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Run: func(cmd *cobra.Command, args []string) {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if username == "" || password == "" {
			log.Fatal("Both --username and --password are required")
		}

		config.InitConfig()
		cfg := config.Get()

		db, err := database.NewDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		usersRepository := users.NewRepository(db)
		loginService := auth.NewLoginService(usersRepository, nil)

		user, err := loginService.CreateUser(username, password)
		if err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}

		log.Printf("User %s created, id=%d uuid=%s", user.Username, user.ID, user.UUID)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().String("username", "", "username for the new user")
	userCreateCmd.Flags().String("password", "", "password for the new user")
}
