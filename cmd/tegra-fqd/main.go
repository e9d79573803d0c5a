// tegra-fqd commits CPU frequency policy for Tegra boards from flag files
// set by the Android framework.
package main

import "github.com/ppiankov/tegra-fqd/internal/cli"

func main() {
	cli.Execute()
}
