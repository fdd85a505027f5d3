package logging

import (
	"log"
	"os"

	"github.com/careloop/guardrail/version"
)

func init() {
	log.SetOutput(os.Stdout)
	log.SetPrefix("[guardrail] ")
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)

	log.Println("Version:", version.Revision)
}
