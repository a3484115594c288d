package main

import (
	"context"
	"log"
	"os"

	"github.com/sara-git-hub/diabcare/internal/clinicianctl"
)

func main() {

	ctx := context.Background()
	opts, err := clinicianctl.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := clinicianctl.Run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}

}
