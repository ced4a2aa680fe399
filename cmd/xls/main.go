package main

import (
	"go.brendoncarroll.net/star"

	"github.com/rw1nkler/xls/xlscmd"
)

func main() {
	star.Main(xlscmd.Root())
}
