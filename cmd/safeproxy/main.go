// safeproxy - SSH SOCKS proxy on untrusted wireless networks
package main

import (
	"github.com/user/safeproxy/internal/cli"
)

func main() {
	cli.Execute()
}
