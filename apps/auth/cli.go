package auth

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/getevo/evo/v2/lib/args"
	"github.com/getevo/evo/v2/lib/db"
)

// CreateAdminUser creates an admin user via CLI
func CreateAdminUser() {
	username := strings.ToLower(args.Get("-username"))
	email := strings.ToLower(args.Get("-email"))
	password := args.Get("-password")
	name := args.Get("-name")

	if username == "" || email == "" || password == "" {
		fmt.Println("Usage: ./flowtalk --create-admin -username admin -email admin@example.com -password secret123 -name Admin")
		os.Exit(1)
	}

	// Check if user already exists
	var existingUser User
	if err := db.Where("username = ? OR email = ?", username, email).First(&existingUser).Error; err == nil {
		// User exists, reset password
		if err := existingUser.SetPassword(password); err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		if name != "" {
			existingUser.DisplayName = name
		}
		existingUser.Type = UserTypeAdministrator
		existingUser.Status = UserStatusActive

		if err := db.Save(&existingUser).Error; err != nil {
			log.Fatalf("Failed to update admin user: %v", err)
		}

		fmt.Printf("Admin user already existed - password has been reset:\n")
		fmt.Printf("Username: %s\n", existingUser.Username)
		fmt.Printf("Email: %s\n", existingUser.Email)
		fmt.Printf("Type: %s\n", existingUser.Type)
		fmt.Printf("ID: %s\n", existingUser.UserID.String())
		return
	}

	// Create new admin user
	user := User{
		Username:        username,
		DisplayName:     name,
		Email:           email,
		PrimaryLanguage: "en",
		Type:            UserTypeAdministrator,
		Status:          UserStatusActive,
	}
	if user.DisplayName == "" {
		user.DisplayName = username
	}

	if err := user.SetPassword(password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created successfully:\n")
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Type: %s\n", user.Type)
	fmt.Printf("ID: %s\n", user.UserID.String())
}
