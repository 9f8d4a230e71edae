// Command hashpw generates an Argon2id hash for ADMIN_PASSWORD_HASH.
//
// Usage:
//
//	hashpw <password>
//
// The password is read from the first argument rather than stdin so the tool
// can be used in provisioning scripts.
package main

import (
	"fmt"
	"os"

	"github.com/devmeetai/interview-service/internal/adapter/httpserver"
)

func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}
	hash, err := httpserver.HashPassword(os.Args[1], httpserver.DefaultArgon2Params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
