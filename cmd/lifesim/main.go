// Command lifesim is the life-simulation client.
package main

import "github.com/lifesim-dev/lifesim/internal/cli"

func main() {
	cli.Execute()
}
