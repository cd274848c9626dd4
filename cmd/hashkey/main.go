// Command hashkey prints the bcrypt hash to put in API_KEY_HASH.
//
//	go run ./cmd/hashkey <api-key>
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nekogravitycat/flight-checker/internal/auth"
)

func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		log.Fatalf("usage: %s <api-key>", os.Args[0])
	}

	hash, err := auth.NewBcryptKeyHasher().Hash(os.Args[1])
	if err != nil {
		log.Fatalf("failed to hash key: %v", err)
	}
	fmt.Println(hash)
}
