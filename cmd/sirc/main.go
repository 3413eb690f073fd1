// Command sirc compiles SIR or Yul source text to a dispatch table and
// can invoke an exported entry point against the mock runtime.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("sirc failed")
		os.Exit(1)
	}
}
