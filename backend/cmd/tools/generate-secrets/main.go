package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

func randomKey(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to read random bytes: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

func main() {
	var adminSecret string
	flag.StringVar(&adminSecret, "admin_secret", "", "admin secret to hash; a random one is generated when empty")
	flag.Parse()

	if adminSecret == "" {
		adminSecret = randomKey(24)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminSecret), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin secret: %v", err)
	}

	fmt.Println("=================================================")
	fmt.Println("  Site secrets")
	fmt.Println("=================================================")
	fmt.Println()
	fmt.Println("Admin secret (send in the x-admin-secret header):")
	fmt.Println(adminSecret)
	fmt.Println()
	fmt.Println("Add this to your config/private.yaml:")
	fmt.Printf("admin_secret: \"%s\"\n", hash)
	fmt.Printf("reminders_secret: \"%s\"\n", randomKey(24))
	fmt.Printf("token_key: \"%s\"\n", randomKey(32))
	fmt.Println()
	fmt.Println("IMPORTANT:")
	fmt.Println("- Rotating token_key invalidates every mailed cancel and unsubscribe link")
	fmt.Println("- Never commit private.yaml to version control!")
	fmt.Println("=================================================")
}
