// Command state-econ extracts US state economic and demographic tables.
package main

import "github.com/pfrederiksen/state-econ/internal/cli"

func main() {
	cli.Execute()
}
