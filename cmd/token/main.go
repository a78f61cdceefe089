// Command token issues a development access token for a user id, signed
// with the same secret as the server.
//
//	token -u alice -s secretKey -d 24h
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/charstudio/internal/server/auth"
)

func main() {
	fs := flag.NewFlagSet("token", flag.ExitOnError)

	userID := fs.String("u", "", "user id to issue the token for")
	secret := fs.String("s", envOr("CHARSTUDIO_SECRET_KEY", "secretKey"), "secret key shared with the server")
	ttl := fs.Duration("d", 24*time.Hour, "token validity")

	_ = fs.Parse(os.Args[1:])

	if *userID == "" {
		fs.Usage()
		os.Exit(2)
	}

	token, err := auth.GenerateToken(*userID, []byte(*secret), *ttl)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println(token)
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
