// Command zone-supervisor is a development stand-in for the remote supervisor.
package main

import "github.com/oshokin/zone-monitor/cmd/zone-supervisor/cmd"

func main() {
	cmd.Execute()
}
