package main

import (
	"fmt"
	"log"

	"github.com/landlink/survey-backend/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("Secret Generator for LandLink")
	fmt.Println("===========================================")
	fmt.Println()

	jwtSecret, err := utils.GenerateSecret(64)
	if err != nil {
		log.Fatalf("Failed to generate JWT secret: %v", err)
	}

	adminCode, err := utils.GenerateSecret(16)
	if err != nil {
		log.Fatalf("Failed to generate admin secret code: %v", err)
	}

	fmt.Println("✅ Secrets generated successfully!")
	fmt.Println()
	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", jwtSecret)
	fmt.Printf("ADMIN_SECRET_CODE=%s\n", adminCode)
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
