// Command zone-monitor streams zone telemetry to the supervisor and drives
// the window servo and the alarm.
package main

import "github.com/oshokin/zone-monitor/cmd/zone-monitor/cmd"

func main() {
	cmd.Execute()
}
