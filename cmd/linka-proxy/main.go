package main

import (
	linkaproxy "github.com/linka-aq/linka-proxy"
	driver "github.com/linka-aq/linka-proxy/drivers/fiuna"
)

func main() {
	fiuna := &driver.Fiuna{}
	defer fiuna.Close()
	linkaproxy.Run(fiuna)
}
