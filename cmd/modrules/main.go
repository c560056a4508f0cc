// Command modrules resolves the build descriptor of a native module for a
// host version and build configuration.
package main

import "github.com/goplus/modrules/cmd/modrules/internal"

func main() {
	internal.Execute()
}
