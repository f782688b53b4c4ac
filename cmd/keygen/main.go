package main

import (
	"fmt"
	"log"

	"github.com/dmitrymomot/invoicedesk/pkg/totp"
)

func main() {
	encodedKey, err := totp.GenerateEncodedEncryptionKey()
	if err != nil {
		log.Fatalf("Failed to generate encryption key: %v", err)
	}

	fmt.Printf("Generated encryption key (for MFA_ENCRYPTION_KEY env var):\n———\n%s\n———\n", encodedKey)
}
