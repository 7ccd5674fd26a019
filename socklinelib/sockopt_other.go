//go:build !unix

package socklinelib

import "net"

func setTOS(tc *net.TCPConn, tos int) {}
