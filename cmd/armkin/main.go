// Package main is armkin, a diagnostic tool for the station's arm models: forward and inverse kinematics,
// world-frame tool points, collision checks and joint-space plan validation.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
