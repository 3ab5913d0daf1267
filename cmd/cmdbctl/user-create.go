package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmdbkit/cmdbkit/pkg/db"
	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user account",
	Long: `Create a user account.

The generated API key is output to STDOUT. It is shown only once; store it
somewhere safe.

Example:
  cmdbctl user create alice
  cmdbctl user create admin --superuser`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		superuser, _ := cmd.Flags().GetBool("superuser")

		apiKey, err := createUser(args[0], superuser)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Created user '%s'\n", args[0])
		fmt.Printf("API key for %s: %s\n", args[0], apiKey)
	},
}

var userRotateKeyCmd = &cobra.Command{
	Use:   "rotate-key <username>",
	Short: "Rotate a user's API key",
	Long: `Rotate a user's API key.

The previous key stops working immediately. The new key is output to STDOUT.

Example:
  cmdbctl user rotate-key alice`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		apiKey, err := rotateUserKey(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rotate key: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("New API key for %s: %s\n", args[0], apiKey)
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userRotateKeyCmd)
	userCreateCmd.Flags().Bool("superuser", false, "Grant superuser privileges")
}

func createUser(username string, superuser bool) (string, error) {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return "", err
	}

	var existing model.User
	if err := database.Where("username = ?", username).First(&existing).Error; err == nil {
		return "", fmt.Errorf("user '%s' already exists", username)
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return "", err
	}

	user := model.User{
		Username:    username,
		APIKey:      apiKey,
		IsSuperuser: superuser,
		IsActive:    true,
	}

	if err := database.Create(&user).Error; err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return apiKey, nil
}

func rotateUserKey(username string) (string, error) {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return "", err
	}

	var user model.User
	if err := database.Where("username = ? AND is_active = ?", username, true).First(&user).Error; err != nil {
		return "", fmt.Errorf("user '%s' not found", username)
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return "", err
	}

	if err := database.Model(&user).Update("api_key", apiKey).Error; err != nil {
		return "", fmt.Errorf("failed to update key: %w", err)
	}

	return apiKey, nil
}

func generateAPIKey() (string, error) {
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}
	return base64.URLEncoding.EncodeToString(keyBytes), nil
}
