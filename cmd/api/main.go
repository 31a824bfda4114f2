package main

import (
	"go.uber.org/fx"

	"github.com/dinehall/dinehall/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
