// SPDX-License-Identifier: MIT
package main

import "github.com/skaphos/dyd/cmd/dyd"

var execute = dyd.Execute

func main() {
	execute()
}
