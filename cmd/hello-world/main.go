// hello-world is the plain baseline every other implementation is
// compared against. It prints "Hello World" and nothing else.
package main

import (
	"fmt"
	"os"

	"github.com/dkoosis/hellobench/pkg/hello"
)

func main() {
	if err := hello.Simple(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "hello-world: %v\n", err)
		os.Exit(1)
	}
}
