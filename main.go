/*
Copyright © 2026 Welborn Productions (welbornprod)
*/
package main

import "github.com/welbornprod/searchpat/cmd"

func main() {
	cmd.Execute()
}
