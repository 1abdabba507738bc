package main

import (
	"github.com/juxbox-org/webtraversallibrary/internal/bootstrap"
)

func main() {
	bootstrap.NewApp().Run()
}
