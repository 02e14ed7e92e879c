// Command convert turns a bank export into a budgeting-tool CSV file.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
