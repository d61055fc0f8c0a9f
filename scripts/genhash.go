//go:build ignore

// genhash prints the bcrypt hash to put in FUNCTION_KEY_HASH.
//
//	go run scripts/genhash.go <function-key>
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	key := ""
	if len(os.Args) > 1 {
		key = os.Args[1]
	} else {
		buf := make([]byte, 24)
		if _, err := rand.Read(buf); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		key = hex.EncodeToString(buf)
		fmt.Printf("Generated key: %s\n", key)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), 12)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Printf("FUNCTION_KEY_HASH=%s\n", string(hash))
}
