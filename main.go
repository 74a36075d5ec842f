// spectag links test definitions to planning specs via @tag annotations in
// doc comments, across Go, Python, JavaScript, TypeScript, Rust and Ruby.
package main

import (
	"github.com/spectag/spectag/cmd"
)

func main() {
	cmd.Execute()
}
