package main

import (
	"log"
	"time"

	"github.com/anoixa/image-tier/config"

	"github.com/anoixa/image-tier/cmd"
)

func init() {
	var cstZone = time.FixedZone("CST", 8*3600) // 东八
	time.Local = cstZone
}

func main() {
	log.Printf("image tier %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
