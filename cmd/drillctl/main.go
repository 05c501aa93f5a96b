// Command drillctl inspects a drill server's database: the saved state, the
// resolved stats and the event ledger.
package main

import "github.com/servak90-glitch/servak90-glitch.github.io-sub001/cmd/drillctl/root"

func main() {
	root.Execute()
}
