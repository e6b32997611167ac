package main

import "geotrail/cmd/client/cmd"

func main() {
	cmd.Execute()
}
