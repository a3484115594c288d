package config

import (
	"flag"
	"os"
	"time"

	"github.com/sara-git-hub/diabcare/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-t int      session time-to-live, minutes
//	-w          enable sliding session renewal
//	-l int      minimum password length
//	-m string   model artifact source (path or s3://bucket/key)
//	-g string   S3 region
//	-u string   S3 access key
//	-p string   S3 secret key
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The session
// TTL is accepted as an integer in minutes and converted to a
// time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-w", "-l", "-m", "-g", "-u", "-p", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session time-to-live (in minutes)")
	fs.BoolVar(&config.SessionSlidingRenewal, "w", config.SessionSlidingRenewal, "extend session expiry on each successful validation")
	fs.IntVar(&config.PasswordMinLength, "l", config.PasswordMinLength, "minimum password length")

	fs.StringVar(&config.ModelSource, "m", config.ModelSource, "risk model artifact source")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
}
